// Package tng implements the TNG trajectory container format: a
// block-structured, self-describing binary container for molecular
// dynamics trajectories, with MD5-checked blocks, a frame-set index for
// random access into multi-gigabyte files, and a compression pipeline
// specialized for slowly-varying per-particle numeric series.
//
// Open a file for range-query reads with Open, or start a new one with
// Create. Both return types from the reader and writer subpackages;
// this file exists only to give the module a single, discoverable entry
// point, the way a production trajectory library's root package
// typically does.
package tng

import (
	"io"

	"github.com/chemfiles/tng/reader"
	"github.com/chemfiles/tng/schema"
	"github.com/chemfiles/tng/topology"
	"github.com/chemfiles/tng/writer"
)

// Open parses the leading blocks of r and returns a read-only handle
// ready to answer range queries (§4.F).
func Open(r io.ReadSeeker) (*reader.Trajectory, error) {
	return reader.Open(r)
}

// Config is the set of file-lifetime parameters a new container is
// created with; it is a re-export of writer.Config so callers need only
// import this package for the common path.
type Config = writer.Config

// Option configures a Writer at construction time; a re-export of
// writer.Option for the same reason as Config.
type Option = writer.Option

// WithoutSync disables the writer's best-effort fsync after every appended
// frame set.
func WithoutSync() Option { return writer.WithoutSync() }

// Create writes a new container's leading blocks to w and returns a
// writer ready to append frame sets (§4.G).
func Create(w io.WriteSeeker, cfg Config, arena *topology.Arena, trajIDs schema.TrajectoryIDsNames, opts ...Option) (*writer.Writer, error) {
	return writer.Create(w, cfg, arena, trajIDs, opts...)
}
