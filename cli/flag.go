package cli

import (
	"github.com/morikuni/failure/v2"
	"github.com/spf13/pflag"
)

// parserOverrideFlag replaces the configured parser only when given
type parserOverrideFlag struct {
	IsSet bool
	Value string
}

// String implements pflag.Value.
func (s *parserOverrideFlag) String() string {
	return s.Value
}

func (s *parserOverrideFlag) Set(value string) error {
	switch value {
	case "pattern", "document":
	default:
		return failure.New(InvalidParser,
			failure.Message("Parser must be pattern or document"),
			failure.Context{"parser": value})
	}
	s.Value = value
	s.IsSet = true
	return nil
}

func (s *parserOverrideFlag) Type() string {
	return "parser"
}

var _ pflag.Value = &parserOverrideFlag{}
