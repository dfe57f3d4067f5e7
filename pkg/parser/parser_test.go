package parser

import (
	"testing"

	"github.com/frankban/quicktest"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

func TestNew(t *testing.T) {
	c := quicktest.New(t)

	cfg := &config.AppConfig{}
	cfg.Parser.Name = FiWareName
	cfg.Server.InstanceHost = "data.example.org"

	p, err := New(cfg)
	c.Assert(err, quicktest.IsNil)

	fiware, ok := p.(*FiWareParser)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(fiware.InstanceHost, quicktest.Equals, "data.example.org")
}

func TestNew_Unconfigured(t *testing.T) {
	c := quicktest.New(t)

	_, err := New(&config.AppConfig{})

	configErr, ok := err.(*errdomain.ConfigError)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(configErr.Option, quicktest.Equals, "parser.name")
}

func TestNew_Unregistered(t *testing.T) {
	c := quicktest.New(t)

	cfg := &config.AppConfig{}
	cfg.Parser.Name = "no-such-parser"

	_, err := New(cfg)

	configErr, ok := err.(*errdomain.ConfigError)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(configErr.Option, quicktest.Equals, "parser.name")
	c.Assert(configErr.Message, quicktest.Contains, "no-such-parser")
}

func TestNames(t *testing.T) {
	c := quicktest.New(t)

	c.Assert(Names(), quicktest.Contains, FiWareName)
}
