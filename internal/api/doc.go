// Package api handles incoming HTTP requests for both services, validates
// them, calls the services and formats the responses. It translates service
// errors into status codes without leaking internal details.
//
// RHS mounts MarketChangeHandler, EventsHandler and StatusHub; MOS mounts
// EventsHandler. Both mount HealthHandler.
package api
