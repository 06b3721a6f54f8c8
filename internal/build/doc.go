// Package build runs a picopage site build.
//
// A Generator executes the pipeline as named stages (load_config, assemble,
// build_site, prepare_output, copy_static, render_pages, finalize), records
// their timings and outcomes into a Report and writes output through a
// sibling staging directory that is promoted only when every stage passed.
package build
