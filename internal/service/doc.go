// Package service contains the task use cases. It sits between the HTTP
// layer and the store: inputs are validated here before any store call, and
// store-level outcomes such as update conflicts are resolved into the small
// set of results the handlers branch on.
//
// The service depends on the store.TaskStore interface only, never on a
// specific backend.
package service
