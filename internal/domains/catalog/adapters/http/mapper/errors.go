package mapper

import (
	"net/http"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var (
	ProblemBookNotFound = apierrors.NewProblem("/problems/item-not-found", "Book Not Found", http.StatusNotFound)
	ProblemInvalidBook  = apierrors.NewProblem("/problems/invalid-book", "Invalid Book", http.StatusBadRequest)
)

// ErrorMapper reports catalog failures as problem details.
var ErrorMapper = apierrors.MapperFor(
	apierrors.ErrorRule{Target: ports.ErrNotFound, Problem: ProblemBookNotFound},
	apierrors.ErrorRule{Target: application.ErrInvalidInput, Problem: ProblemInvalidBook},
)
