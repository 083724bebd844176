package core

import (
	"testing"

	"github.com/kat-co/vala"
	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower bool
		want  string
	}{
		{"trims", "  Grade 7 \n", false, "Grade 7"},
		{"lowers", " RED ", true, "red"},
		{"blank", "   ", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanString(tt.s, tt.lower))
		})
	}
}

type namedString string

type valueLogger struct{}

func (valueLogger) Debug(string, ...interface{}) {}
func (valueLogger) Info(string, ...interface{})  {}
func (valueLogger) Warn(string, ...interface{})  {}
func (valueLogger) Error(string, ...interface{}) {}
func (valueLogger) Fatal(string, ...interface{}) {}

func TestIsSet(t *testing.T) {
	var nilLogger Logger
	var nilPtr *valueLogger
	var nilMap map[string]int

	tests := []struct {
		name    string
		param   interface{}
		wantErr bool
	}{
		{"nil interface", nilLogger, true},
		{"typed nil pointer", nilPtr, true},
		{"nil map", nilMap, true},
		{"struct value", valueLogger{}, false},
		{"pointer", &valueLogger{}, false},
		{"named string", namedString(""), false},
		{"int", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vala.BeginValidation().Validate(IsSet(tt.param, "param")).Check()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "Parameter was nil: param")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
