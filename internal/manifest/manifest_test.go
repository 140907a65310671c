// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/classicalliu/cita-common/internal/testutil"
)

const pubsubManifest = `
[package]
name = "pubsub"
version = "0.1.0"

[dependencies]
logger = { path = "../logger" }

[features]
default = []
rabbitmq = ["amqp"]
zeromq = ["zmq"]
kafka = ["kafka-rs"]
`

func TestParse(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(pubsubManifest))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Package.Name != "pubsub" || m.Package.Version != "0.1.0" {
		t.Errorf("Package = %+v", m.Package)
	}
	for _, f := range []string{"rabbitmq", "zeromq", "kafka"} {
		if !m.HasFeature(f) {
			t.Errorf("HasFeature(%q) = false", f)
		}
	}
	if !slices.Equal(m.Features["zeromq"], []string{"zmq"}) {
		t.Errorf("zeromq feature = %v", m.Features["zeromq"])
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("[package\nname = 1"))
	if err == nil {
		t.Fatal("Parse() should fail on malformed TOML")
	}
	if !strings.Contains(err.Error(), "line ") {
		t.Errorf("error %q should carry the position", err.Error())
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(pubsubManifest))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := m.Require("pubsub", "kafka", "zeromq"); err != nil {
		t.Errorf("Require() = %v, want nil", err)
	}

	err = m.Require("pubsub", "kafka", "nats", "nats")
	var missing *MissingFeatureError
	if !errors.As(err, &missing) {
		t.Fatalf("Require() = %v, want *MissingFeatureError", err)
	}
	if !slices.Equal(missing.Features, []string{"nats"}) {
		t.Errorf("Features = %v, want [nats]", missing.Features)
	}
	if !errors.Is(err, ErrMissingFeature) {
		t.Error("error should wrap ErrMissingFeature")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	root := testutil.NewWorkspace(t, "hashable:sha3hash,blake2bhash,sm3hash")
	m, err := Load(filepath.Join(root, "hashable"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Package.Name != "hashable" || !m.HasFeature("sm3hash") {
		t.Errorf("manifest = %+v", m)
	}

	if _, err := Load(filepath.Join(root, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want os.ErrNotExist", err)
	}
}
