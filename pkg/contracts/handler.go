// Package contracts defines the interfaces shared between the
// application bootstrap and the service handlers.
package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
