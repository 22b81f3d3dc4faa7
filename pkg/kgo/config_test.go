package kgo

import (
	"context"
	"testing"
)

func TestDefaultCfgValidates(t *testing.T) {
	c := defaultCfg()
	if err := c.validate(); err != nil {
		t.Fatalf("defaultCfg().validate() = %v, want nil", err)
	}
}

func TestCfgValidateRejectsNegativeTimeouts(t *testing.T) {
	c := defaultCfg()
	c.requestTimeout = -1
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for negative requestTimeout")
	}

	c = defaultCfg()
	c.connectingTimeout = -1
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for negative connectingTimeout")
	}
}

func TestCfgValidateRejectsBadAcks(t *testing.T) {
	c := defaultCfg()
	c.acks = 7
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for invalid acks")
	}
}

func TestCfgValidateRejectsNilEssentials(t *testing.T) {
	c := defaultCfg()
	c.logger = nil
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for nil logger")
	}

	c = defaultCfg()
	c.partitioner = nil
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for nil partitioner")
	}

	c = defaultCfg()
	c.dial = nil
	if _, ok := c.validate().(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError for nil dial func")
	}
}

func TestNewRouterRejectsInvalidCfg(t *testing.T) {
	_, err := NewRouter(context.Background(), []string{"seed:9092"}, nil, func(c *cfg) {
		c.requestTimeout = -1
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("NewRouter err = %v, want *ValidationError", err)
	}
}
