package config

import (
	"testing"

	"github.com/frankban/quicktest"

	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

func TestValidateConfig(t *testing.T) {
	c := quicktest.New(t)

	valid := &AppConfig{}
	valid.Parser.Name = "fiware"
	valid.Server.InstanceHost = "data.example.org"
	c.Assert(ValidateConfig(valid), quicktest.IsNil)

	missingParser := &AppConfig{}
	missingParser.Server.InstanceHost = "data.example.org"
	err := ValidateConfig(missingParser)
	configErr, ok := err.(*errdomain.ConfigError)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(configErr.Option, quicktest.Equals, "parser.name")

	missingHost := &AppConfig{}
	missingHost.Parser.Name = "fiware"
	err = ValidateConfig(missingHost)
	configErr, ok = err.(*errdomain.ConfigError)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(configErr.Option, quicktest.Equals, "server.instancehost")
}
