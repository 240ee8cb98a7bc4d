// Package workspace manages the scratch directory that application source is moved
// into while the Dotnet CLI compiles it. A scratch directory is created per compile
// (e.g., aspnetcore-20261019-122336-1234567) and removed once the cache has been saved.
package workspace
