package bookstoreserver

import (
	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/http/mapper"
	cataloghttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/http/mapper"
	favouritehttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/http/mapper"
	orderhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/http/mapper"
	userhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/http/mapper"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// problems translates domain failures from every bounded context. Anything
// unmapped is logged and reported as an internal error without its text.
var problems = apierrors.NewResponder(nil,
	orderhttpmapper.ErrorMapper,
	carthttpmapper.ErrorMapper,
	favouritehttpmapper.ErrorMapper,
	cataloghttpmapper.ErrorMapper,
	userhttpmapper.ErrorMapper,
)

// respondProblem writes a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

// respondError maps err through the domain mappers and writes the result.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func abortWithProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	respondProblem(c, problem)
	c.Abort()
}
