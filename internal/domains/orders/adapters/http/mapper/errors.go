package mapper

import (
	"errors"
	"net/http"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var (
	ProblemOrderNotFound       = apierrors.NewProblem("/problems/order-not-found", "Order Not Found", http.StatusNotFound)
	ProblemUserNotFound        = apierrors.NewProblem("/problems/user-not-found", "User Not Found", http.StatusNotFound)
	ProblemItemNotFound        = apierrors.NewProblem("/problems/item-not-found", "Book Not Found", http.StatusNotFound)
	ProblemEmptyCart           = apierrors.NewProblem("/problems/empty-cart", "Empty Cart", http.StatusUnprocessableEntity)
	ProblemInvalidStatus       = apierrors.NewProblem("/problems/invalid-status", "Invalid Status", http.StatusBadRequest)
	ProblemInvalidTransition   = apierrors.NewProblem("/problems/invalid-status-transition", "Invalid Status Transition", http.StatusConflict)
	ProblemIdempotencyConflict = apierrors.NewProblem("/problems/idempotency-conflict", "Idempotency Conflict", http.StatusConflict)
	ProblemCartChanged         = apierrors.NewProblem("/problems/cart-changed", "Cart Changed", http.StatusConflict)
)

var rules = apierrors.MapperFor(
	apierrors.ErrorRule{Target: ports.ErrNotFound, Problem: ProblemOrderNotFound},
	apierrors.ErrorRule{Target: ports.ErrUserNotFound, Problem: ProblemUserNotFound},
	apierrors.ErrorRule{Target: ports.ErrItemNotFound, Problem: ProblemItemNotFound},
	apierrors.ErrorRule{Target: domain.ErrEmptyCart, Problem: ProblemEmptyCart},
	apierrors.ErrorRule{Target: domain.ErrInvalidStatus, Problem: ProblemInvalidStatus},
	apierrors.ErrorRule{Target: ports.ErrIdempotencyConflict, Problem: ProblemIdempotencyConflict},
	apierrors.ErrorRule{Target: ports.ErrCartChanged, Problem: ProblemCartChanged},
	apierrors.ErrorRule{Target: application.ErrInvalidInput, Problem: apierrors.ErrValidation},
)

// ErrorMapper reports order failures as problem details. Rejected
// transitions carry the current and requested status as extensions.
func ErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return ProblemInvalidTransition.
			WithDetail(err.Error()).
			WithExtension("currentStatus", string(transition.From)).
			WithExtension("requestedStatus", string(transition.To)), true
	}
	return rules(err)
}
