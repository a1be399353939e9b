// pkg/config/join.go

package config

import (
	"encoding/json"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
)

// JoinConfig describes the proxy/cluster topology the server attaches
// to. It is validated here but interpreted only by the server binary.
type JoinConfig struct {
	Host    string       `json:"host" validate:"required"`
	Port    int          `json:"port" validate:"gt=0"`
	Servers []JoinServer `json:"servers" validate:"omitempty,dive"`
}

// JoinServer is one GPU server entry in a join configuration.
type JoinServer struct {
	Address  string `json:"address" validate:"required"`
	Port     int    `json:"port" validate:"gt=0"`
	Priority int    `json:"priority"`
}

// ParseJoinConfig parses and validates a --join JSON string. The input
// must be a JSON object with non-empty host and positive port; every
// entry of the optional servers list needs a non-empty address and a
// positive port.
func ParseJoinConfig(raw string) (*JoinConfig, error) {
	// Reject non-object payloads (arrays, strings, numbers) up front;
	// json.Unmarshal into a struct would also accept "null".
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil || probe == nil {
		return nil, dts_err.New(dts_err.KindValidation, "join configuration must be a valid JSON object")
	}

	var jc JoinConfig
	if err := json.Unmarshal([]byte(raw), &jc); err != nil {
		return nil, dts_err.Wrap(dts_err.KindValidation, err, "join configuration must be valid JSON")
	}

	if err := validate.Struct(&jc); err != nil {
		return nil, dts_err.Wrap(dts_err.KindValidation, err,
			"join configuration must include a non-empty host and a positive port")
	}
	return &jc, nil
}
