package handlers

import (
	"localbazaar/internal/identity"
	"localbazaar/internal/repos"
	"localbazaar/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Verifier identity.Verifier

	Auth       *services.AuthService
	Admin      *services.AdminService
	Reconciler *services.Reconciler

	AuthHandler     *AuthHandler
	ListingHandler  *ListingHandler
	OrderHandler    *OrderHandler
	ReportHandler   *ReportHandler
	AdminHandler    *AdminHandler
	WishlistHandler *WishlistHandler
	CartHandler     *CartHandler
	CategoryHandler *CategoryHandler
}

func NewDeps(db *sqlx.DB, v identity.Verifier) *Deps {
	userRepo := repos.NewUserRepo(db)
	listingRepo := repos.NewListingRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	reportRepo := repos.NewReportRepo(db)
	statsRepo := repos.NewStatsRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	cartRepo := repos.NewCartRepo(db)

	authSvc := services.NewAuthService(userRepo)
	listingSvc := services.NewListingService(listingRepo)
	orderSvc := services.NewOrderService(orderRepo, listingRepo)
	reportSvc := services.NewReportService(reportRepo, listingRepo)
	adminSvc := services.NewAdminService(userRepo, listingSvc, orderRepo, statsRepo)
	wishSvc := services.NewWishlistService(wishRepo, listingRepo)
	cartSvc := services.NewCartService(cartRepo, listingRepo, orderSvc)

	return &Deps{
		Verifier:   v,
		Auth:       authSvc,
		Admin:      adminSvc,
		Reconciler: services.NewReconciler(repos.NewReconcileRepo(db)),

		AuthHandler:     &AuthHandler{Auth: authSvc},
		ListingHandler:  &ListingHandler{Listings: listingSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		ReportHandler:   &ReportHandler{Reports: reportSvc},
		AdminHandler:    &AdminHandler{Admin: adminSvc},
		WishlistHandler: &WishlistHandler{Wish: wishSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CategoryHandler: &CategoryHandler{Categories: catRepo},
	}
}
