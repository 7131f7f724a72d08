package globals

import (
	"context"
	"datasources-client/internal/app"
	"datasources-client/internal/components/telemetry"
)

type key struct{}

type Value struct {
	App       *app.App
	Telemetry telemetry.Telemetry
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	value, _ := ctx.Value(key{}).(*Value)
	return value
}
