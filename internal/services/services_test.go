package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localbazaar/internal/domain"
	"localbazaar/internal/identity"
	"localbazaar/internal/repos"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"
)

type fixture struct {
	db       *sqlx.DB
	users    *repos.UserRepo
	auth     *services.AuthService
	listings *services.ListingService
	orders   *services.OrderService
	reports  *services.ReportService
	admin    *services.AdminService
	cart     *services.CartService
	wishlist *services.WishlistService
	recon    *services.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	listingRepo := repos.NewListingRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	f := &fixture{db: db, users: userRepo}
	f.auth = services.NewAuthService(userRepo)
	f.listings = services.NewListingService(listingRepo)
	f.orders = services.NewOrderService(orderRepo, listingRepo)
	f.reports = services.NewReportService(repos.NewReportRepo(db), listingRepo)
	f.admin = services.NewAdminService(userRepo, f.listings, orderRepo, repos.NewStatsRepo(db))
	f.cart = services.NewCartService(repos.NewCartRepo(db), listingRepo, f.orders)
	f.wishlist = services.NewWishlistService(repos.NewWishlistRepo(db), listingRepo)
	f.recon = services.NewReconciler(repos.NewReconcileRepo(db))
	return f
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(),
		identity.Identity{Subject: "sub-" + name, Email: name + "@campus.test", EmailVerified: true},
		services.RegisterInput{Name: name, Campus: "Main"})
	require.NoError(t, err)
	return u
}

func (f *fixture) reload(t *testing.T, u *domain.User) *domain.User {
	t.Helper()
	fresh, err := f.users.ByID(context.Background(), u.ID)
	require.NoError(t, err)
	return fresh
}

func lampInput() services.CreateListingInput {
	price := decimal.NewFromInt(500)
	return services.CreateListingInput{
		Title:       "Used Lamp",
		Description: "Warm desk lamp used lamp in good shape",
		Price:       &price,
		Category:    "Other",
		Condition:   "Good",
		Images:      []string{"https://media.campus.test/lamp.jpg"},
	}
}

func TestRegister_OnceOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "sam")
	assert.Zero(t, u.TotalListings)
	assert.Zero(t, u.TotalSales)
	assert.True(t, u.IsActive)
	assert.True(t, u.IsVerified)

	_, err := f.auth.Register(ctx, identity.Identity{Subject: "sub-sam", Email: "other@campus.test"},
		services.RegisterInput{Name: "Sam", Campus: "Main"})
	assert.ErrorIs(t, err, services.ErrAlreadyRegistered)

	got, err := f.auth.Resolve(ctx, "sub-sam")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.auth.Resolve(ctx, "sub-nobody")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), identity.Identity{Subject: "x", Email: "x@campus.test"},
		services.RegisterInput{Name: "", Campus: "", Phone: "12"})
	var verrs *validate.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Fields, 3)
}

func TestCreateListing_RoundTripAndCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	other := f.register(t, "bea")

	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, l.Status)
	assert.Equal(t, "Main", l.Campus)
	assert.Zero(t, l.Views)

	got, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	in := lampInput()
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Description, got.Description)
	assert.True(t, in.Price.Equal(got.Price))
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Condition, got.Condition)
	assert.Equal(t, domain.StringList(in.Images), got.Images)
	assert.Equal(t, domain.StringList{"used", "lamp", "warm", "desk", "in", "good", "shape"}, got.Keywords)

	assert.Equal(t, 1, f.reload(t, seller).TotalListings)
	assert.Equal(t, 0, f.reload(t, other).TotalListings)
}

func TestUpdateListing_OwnerOnlyAndKeywords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	other := f.register(t, "bea")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	title := "Brass Lamp"
	_, err = f.listings.Update(ctx, other, l.ID, services.UpdateListingInput{Title: &title})
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, f.listings.Delete(ctx, other, l.ID), services.ErrForbidden)

	updated, err := f.listings.Update(ctx, seller, l.ID, services.UpdateListingInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Brass Lamp", updated.Title)
	assert.Equal(t, "brass", updated.Keywords[0])

	deleted := domain.StatusDeleted
	_, err = f.listings.Update(ctx, seller, l.ID, services.UpdateListingInput{Status: &deleted})
	var verrs *validate.Errors
	assert.True(t, errors.As(err, &verrs), "deleted is reachable only through delete")
}

func TestDeleteListing_HidesAndDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	require.NoError(t, f.listings.Delete(ctx, seller, l.ID))
	assert.Equal(t, 0, f.reload(t, seller).TotalListings)

	page, err := f.listings.List(ctx, services.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Listings)
	mine, err := f.listings.ListMine(ctx, seller, "", domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, mine.Listings)

	_, err = f.listings.View(ctx, l.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, f.listings.Delete(ctx, seller, l.ID), services.ErrNotFound)
}

func TestView_RawHitCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		got, err := f.listings.View(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.Views)
	}
}

func TestOrder_CompleteFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	o, err := f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.True(t, o.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, seller.ID, o.SellerID)
	assert.Equal(t, "bea@campus.test", o.BuyerEmail)
	require.NotNil(t, o.Listing)
	assert.Equal(t, "Used Lamp", o.Listing.Title)

	_, err = f.orders.SetStatus(ctx, buyer, o.ID, services.OrderStatusInput{Status: domain.OrderCompleted})
	assert.ErrorIs(t, err, services.ErrForbidden)

	done, err := f.orders.SetStatus(ctx, seller, o.ID, services.OrderStatusInput{Status: domain.OrderCompleted, SellerNotes: notes("  met at library ")})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, done.Status)
	assert.Equal(t, "met at library", done.SellerNotes)

	sold, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, sold.Status)
	assert.Equal(t, 1, f.reload(t, seller).TotalSales)

	_, err = f.orders.SetStatus(ctx, seller, o.ID, services.OrderStatusInput{Status: domain.OrderPending})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, 1, f.reload(t, seller).TotalSales)
}

func notes(s string) *string { return &s }

func TestOrder_SellerNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	o, err := f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID})
	require.NoError(t, err)

	got, err := f.orders.SetStatus(ctx, seller, o.ID, services.OrderStatusInput{Status: domain.OrderAccepted, SellerNotes: notes(" library, 5pm ")})
	require.NoError(t, err)
	assert.Equal(t, "library, 5pm", got.SellerNotes)

	// omitted notes are kept
	l2, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	o2, err := f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l2.ID})
	require.NoError(t, err)
	_, err = f.orders.SetStatus(ctx, seller, o2.ID, services.OrderStatusInput{Status: domain.OrderAccepted, SellerNotes: notes("gym lobby")})
	require.NoError(t, err)
	got, err = f.orders.SetStatus(ctx, seller, o2.ID, services.OrderStatusInput{Status: domain.OrderCompleted})
	require.NoError(t, err)
	assert.Equal(t, "gym lobby", got.SellerNotes)

	// blank notes clear them
	got, err = f.orders.SetStatus(ctx, seller, o.ID, services.OrderStatusInput{Status: domain.OrderCancelled, SellerNotes: notes("   ")})
	require.NoError(t, err)
	assert.Empty(t, got.SellerNotes)
}

func TestOrder_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	stranger := f.register(t, "cal")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, seller, services.CreateOrderInput{ListingID: l.ID})
	assert.ErrorIs(t, err, services.ErrSelfInquiry)

	_, err = f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: "missing"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	o, err := f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID, Message: "still there?"})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID})
	require.NoError(t, err, "repeat inquiries are separate orders")

	_, err = f.orders.Get(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.orders.Get(ctx, seller, o.ID)
	assert.NoError(t, err)

	reserved := domain.StatusReserved
	_, err = f.listings.Update(ctx, seller, l.ID, services.UpdateListingInput{Status: &reserved})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID})
	assert.ErrorIs(t, err, services.ErrNotAvailable)

	asBuyer, err := f.orders.ListForBuyer(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, asBuyer, 2)
	asSeller, err := f.orders.ListForSeller(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, asSeller, 2)
}

func TestReport_ListingRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	reporter := f.register(t, "bea")
	admin := f.register(t, "ada")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	rep, err := f.reports.Create(ctx, reporter, services.CreateReportInput{ListingID: l.ID, Reason: "Spam", Description: "posted five times"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportPending, rep.Status)
	assert.Equal(t, domain.ActionNone, rep.ActionTaken)

	queue, err := f.reports.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	done, err := f.reports.Review(ctx, admin, rep.ID, services.ReviewInput{Status: domain.ReportResolved, ActionTaken: domain.ActionListingRemoved})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportResolved, done.Status)
	require.NotNil(t, done.ReviewedBy)
	assert.Equal(t, admin.ID, *done.ReviewedBy)
	assert.NotNil(t, done.ReviewedAt)

	gone, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleted, gone.Status)
	page, err := f.listings.List(ctx, services.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Listings)
	assert.Equal(t, 0, f.reload(t, seller).TotalListings)

	_, err = f.reports.Review(ctx, admin, rep.ID, services.ReviewInput{Status: domain.ReportPending})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	mine, err := f.reports.ListForReporter(ctx, reporter)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestReport_UserSuspended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	reporter := f.register(t, "bea")
	admin := f.register(t, "ada")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	rep, err := f.reports.Create(ctx, reporter, services.CreateReportInput{ListingID: l.ID, Reason: "Scam/Fraud", Description: "asked for a deposit"})
	require.NoError(t, err)

	_, err = f.reports.Review(ctx, admin, rep.ID, services.ReviewInput{Status: domain.ReportReviewed, ActionTaken: domain.ActionUserSuspended})
	require.NoError(t, err)
	assert.False(t, f.reload(t, seller).IsActive)
}

func TestAdmin_OverviewAndUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	admin := f.register(t, "ada")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, buyer, services.CreateOrderInput{ListingID: l.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.admin.Authorize(seller), services.ErrForbidden)
	admin, err = f.admin.GrantAdmin(ctx, "ada@campus.test")
	require.NoError(t, err)
	assert.NoError(t, f.admin.Authorize(admin))

	st, err := f.admin.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalUsers)
	assert.Equal(t, 1, st.TotalListings)
	assert.Equal(t, 1, st.TotalOrders)
	assert.Equal(t, 0, st.PendingReports)
	assert.Equal(t, 3, st.NewUsers)
	assert.Equal(t, 1, st.NewListings)
	assert.Equal(t, 1, st.NewOrders)

	_, err = f.admin.SetUserActive(ctx, admin, admin.ID, false)
	assert.ErrorIs(t, err, services.ErrForbidden)
	u, err := f.admin.SetUserActive(ctx, admin, buyer.ID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	active := true
	page, err := f.admin.ListUsers(ctx, domain.UserFilter{IsActive: &active}, domain.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)

	detail, err := f.admin.GetUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, detail.BuyerOrders, 1)
	assert.Empty(t, detail.SellerOrders)

	require.NoError(t, f.admin.DeleteListing(ctx, l.ID))
	require.NoError(t, f.admin.DeleteListing(ctx, l.ID))
	assert.Equal(t, 0, f.reload(t, seller).TotalListings)
	all, err := f.admin.ListListings(ctx, services.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Listings, 1, "admin view keeps deleted listings")
}

func TestCart_CheckoutCreatesInquiries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	lamp, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)
	in := lampInput()
	in.Title = "Bookshelf"
	shelf, err := f.listings.Create(ctx, seller, in)
	require.NoError(t, err)

	require.NoError(t, f.cart.Add(ctx, buyer, lamp.ID, 2))
	require.NoError(t, f.cart.Add(ctx, buyer, lamp.ID, 1))
	require.NoError(t, f.cart.Add(ctx, buyer, shelf.ID, 1))
	assert.ErrorIs(t, f.cart.Add(ctx, seller, lamp.ID, 1), services.ErrSelfInquiry)

	view, err := f.cart.View(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Qty)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(2000)))

	// shelf sells to someone else before checkout
	sold := domain.StatusSold
	_, err = f.listings.Update(ctx, seller, shelf.ID, services.UpdateListingInput{Status: &sold})
	require.NoError(t, err)

	res, err := f.cart.Checkout(ctx, buyer, "")
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "Order from cart - Qty 3 - Used Lamp", res.Orders[0].Message)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, shelf.ID, res.Skipped[0].ListingID)

	view, err = f.cart.View(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "skipped line stays in the cart")
	assert.Equal(t, shelf.ID, view.Items[0].ListingID)
}

func TestWishlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	buyer := f.register(t, "bea")
	l, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	require.NoError(t, f.wishlist.Save(ctx, buyer, l.ID))
	require.NoError(t, f.wishlist.Save(ctx, buyer, l.ID))
	assert.ErrorIs(t, f.wishlist.Save(ctx, buyer, "missing"), services.ErrNotFound)

	rows, err := f.wishlist.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Used Lamp", rows[0].Title)

	require.NoError(t, f.wishlist.Unsave(ctx, buyer, l.ID))
	rows, err = f.wishlist.List(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReconciler_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.register(t, "sam")
	_, err := f.listings.Create(ctx, seller, lampInput())
	require.NoError(t, err)

	n, err := f.recon.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.db.Exec(`UPDATE users SET total_listings = 9 WHERE id = ?`, seller.ID)
	require.NoError(t, err)
	n, err = f.recon.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.reload(t, seller).TotalListings)
}
