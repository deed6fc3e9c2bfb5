package testutils

import (
	"encoding/json"

	"github.com/bradleyjkemp/cupaloy"
)

// Snapshotter stores snapshots under a directory shared by a package's tests.
type Snapshotter struct {
	config *cupaloy.Config
}

func NewSnapshotter(subdirectory string) *Snapshotter {
	return &Snapshotter{
		config: cupaloy.New(cupaloy.SnapshotSubdirectory(subdirectory)),
	}
}

func (s *Snapshotter) SnapshotT(t cupaloy.TestingT, i ...interface{}) {
	s.config.SnapshotT(t, i...)
}

// SnapshotTJson snapshots the indented JSON encoding of v.
func (s *Snapshotter) SnapshotTJson(t cupaloy.TestingT, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	s.config.SnapshotT(t, string(data))
}
