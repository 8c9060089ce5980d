// Package xai is a minimal client for the xAI Responses API
// (POST /v1/responses) with the server-side x_search tool.
//
// A Client sends exactly one request per Create call and never retries.
// Non-2xx statuses and transport failures are mapped to categorized
// *api.Error values by a table-driven classifier.
package xai
