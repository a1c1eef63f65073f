/*
Package server serves stored course plans over HTTP.

# Basic Usage

	store := memory.New()
	h := server.NewHandler(store, holiday.Default(), recurrence.NewEngine())
	http.ListenAndServe(":8080", h)

# Routes

  - GET /plans - plan ids and course names
  - GET /plans/{id} - review summary and topic catalog
  - PUT /plans/{id} - create or replace a plan from a YAML body
  - DELETE /plans/{id} - remove a plan
  - GET /plans/{id}/weeks - week groups with topics
  - GET /plans/{id}/export/{format} - ics, csv, xlsx or html download

Every plan response carries the plan ETag. Exports honour If-None-Match.
*/
package server
