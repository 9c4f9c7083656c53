// Package testsupport holds helpers shared by package tests: a config
// builder, file fixtures, and FakeTools, a CommandRunner that imitates the
// external tools closely enough for end-to-end pipeline tests.
package testsupport
