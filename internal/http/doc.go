// Package http serves the planner over a read-only JSON API.
//
// The router exposes the following endpoints:
//   - GET /api/health: liveness probe returning {"status","time"}.
//   - GET /api/schedule/day?date=YYYY-MM-DD: the day schedule holding date
//     (today when omitted) as a `dayDTO` with busy and free slots and conflict
//     groups.
//   - GET /api/schedule/week?start=YYYY-MM-DD: the seven day schedules of the
//     week holding start plus a `weekSummaryDTO`.
//   - GET /api/events?kind=&course=&status=&q=&favorite=&saved=&from=&to=:
//     events matching every given condition. List parameters accept repeated
//     keys or comma separated values; status=all lifts the default
//     active/pending restriction.
//   - GET /api/highest-weight-event: the most urgent pending item with its
//     score, level and study recommendations.
//   - GET /api/student-data: the normalized events inside the service
//     horizon, the records that failed to normalize and the user flags.
//   - GET /metrics: Prometheus exposition, when configured.
//
// With CORS in the middleware chain, browsers on the configured origins may
// read every endpoint; preflight requests are answered by the middleware.
//
// Invalid parameters answer 422 with per-field messages; unparseable dates
// answer 400. Response DTOs live in dto.go.
package http
