// Package api defines the caller-facing types of the xsearch adapter.
//
// It provides the strict request variants for the three search operations,
// the result shapes returned for the json format, request validation, and
// the error taxonomy shared by every other package.
//
// The package uses only the Go standard library and performs no I/O.
//
// Core types:
//   - [SearchPostsRequest], [UserPostsRequest], [TrendingRequest]: tool inputs
//   - [Post], [Trend], [PostsResult], [TrendsResult]: structured results
//   - [Output]: text plus optional structured result of one call
//   - [Error]: categorized error with a caller-facing [ErrorEnvelope]
package api
