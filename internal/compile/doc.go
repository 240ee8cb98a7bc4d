// Package compile runs the compile pipeline of the buildpack: restore caches, decide on
// the NuGet package cache, run the installers that are needed, publish the application
// with the Dotnet CLI and save the caches for the next build.
//
// Every step runs through the same wrapper. A failing step is reported once on the
// console and ends the pipeline; Compile reports the failure and returns false.
package compile
