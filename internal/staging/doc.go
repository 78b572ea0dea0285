// Package staging decides how a file referenced by a job travels between the
// submit machine, the shared remote storage area, and the worker's scratch
// directory.
//
// Every file a job declares is classified into exactly one location category
// based on its raw path and the storage root. The category determines where
// the file is staged before submission and which path the running program
// will actually see in its argument list. The resolver only computes these
// locations; performing the copies is left to the caller.
package staging
