package mapper

import (
	"net/http"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var (
	ProblemLineNotFound    = apierrors.NewProblem("/problems/cart-line-not-found", "Cart Line Not Found", http.StatusNotFound)
	ProblemItemNotFound    = apierrors.NewProblem("/problems/item-not-found", "Book Not Found", http.StatusNotFound)
	ProblemUserNotFound    = apierrors.NewProblem("/problems/user-not-found", "User Not Found", http.StatusNotFound)
	ProblemInvalidQuantity = apierrors.NewProblem("/problems/invalid-quantity", "Invalid Quantity", http.StatusBadRequest)
)

// ErrorMapper reports cart failures as problem details.
var ErrorMapper = apierrors.MapperFor(
	apierrors.ErrorRule{Target: ports.ErrLineNotFound, Problem: ProblemLineNotFound},
	apierrors.ErrorRule{Target: ports.ErrItemNotFound, Problem: ProblemItemNotFound},
	apierrors.ErrorRule{Target: ports.ErrUserNotFound, Problem: ProblemUserNotFound},
	apierrors.ErrorRule{Target: domain.ErrInvalidQuantity, Problem: ProblemInvalidQuantity},
	apierrors.ErrorRule{Target: application.ErrInvalidInput, Problem: apierrors.ErrValidation},
)
