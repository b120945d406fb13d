package gorawrstash

import (
	"github.com/Keksclan/goRawrStash/track"
	"github.com/apex/log"
	"github.com/google/uuid"
)

// DefaultMethodName is the name Store calls are tracked under unless
// WithMethodName says otherwise.
const DefaultMethodName = "Cache.Store"

// config holds the internal configuration assembled via functional options.
type config struct {
	methodName string
	newKey     func() string
	logger     log.Interface
	layers     []layer
}

// layer produces the middleware for one tracked method. order selects its
// slot in the chain (see internal/core).
type layer struct {
	order int
	build func(name string) track.Middleware
}

func defaultConfig() config {
	return config{
		methodName: DefaultMethodName,
		newKey:     uuid.NewString,
		logger:     log.Log,
	}
}
