package stashrpc

import (
	"github.com/Keksclan/goRawrStash/track"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StoreRequest carries exactly one scalar to store.
type StoreRequest struct {
	String *string  `json:"string,omitempty"`
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
	Bytes  *[]byte  `json:"bytes,omitempty"`
}

// StoreResponse returns the generated key.
type StoreResponse struct {
	Key string `json:"key"`
}

// Decode names accepted by GetRequest.Decode.
const (
	DecodeNone   = ""
	DecodeString = "string"
	DecodeInt    = "int"
	DecodeFloat  = "float"
)

// GetRequest reads a key, optionally decoding it.
type GetRequest struct {
	Key    string `json:"key"`
	Decode string `json:"decode,omitempty"`
}

// GetResponse holds the raw value, and the decoded one in the field matching
// the requested decoding. Found is false for a missing key.
type GetResponse struct {
	Found  bool     `json:"found"`
	Value  []byte   `json:"value,omitempty"`
	String *string  `json:"string,omitempty"`
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
}

// CallCountRequest names a tracked method.
type CallCountRequest struct {
	Method string `json:"method"`
}

// CallCountResponse is the method's call count.
type CallCountResponse struct {
	Count int64 `json:"count"`
}

// ReplayRequest names a tracked method.
type ReplayRequest struct {
	Method string `json:"method"`
}

// ReplayResponse is the method's history, structured and rendered.
type ReplayResponse struct {
	Count int64        `json:"count"`
	Calls []track.Call `json:"calls"`
	Trace string       `json:"trace"`
}

// stashMsg is a marker interface satisfied by every message of the service.
type stashMsg interface {
	isStashMsg()
}

func (*StoreRequest) isStashMsg()      {}
func (*StoreResponse) isStashMsg()     {}
func (*GetRequest) isStashMsg()        {}
func (*GetResponse) isStashMsg()       {}
func (*CallCountRequest) isStashMsg()  {}
func (*CallCountResponse) isStashMsg() {}
func (*ReplayRequest) isStashMsg()     {}
func (*ReplayResponse) isStashMsg()    {}

// value returns the single scalar set on r.
func (r *StoreRequest) value() (any, error) {
	var v any
	set := 0
	if r.String != nil {
		v, set = *r.String, set+1
	}
	if r.Int != nil {
		v, set = *r.Int, set+1
	}
	if r.Float != nil {
		v, set = *r.Float, set+1
	}
	if r.Bytes != nil {
		v, set = *r.Bytes, set+1
	}
	if set != 1 {
		return nil, status.Errorf(codes.InvalidArgument, "exactly one of string, int, float, bytes must be set, got %d", set)
	}
	return v, nil
}
