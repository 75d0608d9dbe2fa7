// Package api handles incoming HTTP requests for the task pages: routing,
// form binding, validation feedback and HTML rendering. It translates HTTP
// concerns into calls on service.TaskService and maps the results back to
// redirects, re-rendered forms or error pages.
package api
