// Package search implements the three X search operations on top of a
// single xAI Responses API call each.
//
// Every operation validates its request, resolves the API key, builds a
// prompt and an x_search tool configuration, calls the upstream exactly
// once and shapes the answer into markdown or a structured result. A
// validation or configuration failure never reaches the network.
package search
