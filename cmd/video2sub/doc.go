// Package main hosts the video2sub CLI entrypoint and command graph.
//
// The root command takes one video path, audio path, or URL and hands it to
// the workflow runner with options merged from the settings file and flags.
// Subcommands scaffold and inspect configuration (config init/validate/show),
// check the external tools (doctor), and list a URL's subtitle tracks (probe).
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
