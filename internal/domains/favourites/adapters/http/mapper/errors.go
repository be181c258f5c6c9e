package mapper

import (
	"net/http"

	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var (
	ProblemFavouriteNotFound = apierrors.NewProblem("/problems/favourite-not-found", "Favourite Not Found", http.StatusNotFound)
	ProblemAlreadyFavourite  = apierrors.NewProblem("/problems/already-favourite", "Already A Favourite", http.StatusConflict)
	ProblemBookNotFound      = apierrors.NewProblem("/problems/item-not-found", "Book Not Found", http.StatusNotFound)
	ProblemUserNotFound      = apierrors.NewProblem("/problems/user-not-found", "User Not Found", http.StatusNotFound)
)

var ErrorMapper = apierrors.MapperFor(
	apierrors.ErrorRule{Target: ports.ErrNotFound, Problem: ProblemFavouriteNotFound},
	apierrors.ErrorRule{Target: ports.ErrAlreadyFavourite, Problem: ProblemAlreadyFavourite},
	apierrors.ErrorRule{Target: ports.ErrBookNotFound, Problem: ProblemBookNotFound},
	apierrors.ErrorRule{Target: ports.ErrUserNotFound, Problem: ProblemUserNotFound},
)
