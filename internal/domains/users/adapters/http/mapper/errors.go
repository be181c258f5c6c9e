package mapper

import (
	"net/http"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var (
	ProblemUserNotFound       = apierrors.NewProblem("/problems/user-not-found", "User Not Found", http.StatusNotFound)
	ProblemDuplicateUsername  = apierrors.NewProblem("/problems/duplicate-username", "Username Taken", http.StatusConflict)
	ProblemInvalidCredentials = apierrors.NewProblem("/problems/invalid-credentials", "Invalid Credentials", http.StatusUnauthorized)
	ProblemUnauthenticated    = apierrors.NewProblem(apierrors.TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
)

// ErrorMapper reports account and session failures as problem details.
var ErrorMapper = apierrors.MapperFor(
	apierrors.ErrorRule{Target: ports.ErrNotFound, Problem: ProblemUserNotFound},
	apierrors.ErrorRule{Target: ports.ErrDuplicateUsername, Problem: ProblemDuplicateUsername},
	apierrors.ErrorRule{Target: application.ErrAuthentication, Problem: ProblemInvalidCredentials},
	apierrors.ErrorRule{Target: application.ErrUnauthenticated, Problem: ProblemUnauthenticated},
	apierrors.ErrorRule{Target: application.ErrInvalidInput, Problem: apierrors.ErrValidation},
)
