package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"
)

// sessionTokenTTL bounds how long a verification token stays valid.
const sessionTokenTTL = 24 * time.Hour

var ErrNoActiveSubscription = errors.New("no active subscription")

// SessionClaims is the signed payload handed back on verification and
// required for cancellation and portal access.
type SessionClaims struct {
	Email        string `json:"email"`
	IsSubscribed bool   `json:"isSubscribed"`
	CustomerID   string `json:"customerId"`
	jwt.RegisteredClaims
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type VerifyResult struct {
	IsSubscribed bool                 `json:"isSubscribed"`
	SessionToken string               `json:"sessionToken,omitempty"`
	Subscription *stripe.Subscription `json:"subscription,omitempty"`
}

type CancelResult struct {
	Success          bool  `json:"success"`
	CancelAt         int64 `json:"cancelAt,omitempty"`
	CurrentPeriodEnd int64 `json:"currentPeriodEnd,omitempty"`
}

// SubscriptionService fronts Stripe for checkout, verification,
// cancellation, and billing-portal access. The global stripe.Key is
// set once at startup.
type SubscriptionService struct {
	jwtSecret   []byte
	priceID     string
	frontendURL string
	userService *UserService
	now         func() time.Time
}

func NewSubscriptionService(jwtSecret, priceID, frontendURL string, userService *UserService) *SubscriptionService {
	return &SubscriptionService{
		jwtSecret:   []byte(jwtSecret),
		priceID:     priceID,
		frontendURL: frontendURL,
		userService: userService,
		now:         time.Now,
	}
}

// CreateCheckoutSession finds or creates the Stripe customer for the
// email and opens a subscription-mode checkout session.
func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, email, successURL, cancelURL string) (*CheckoutSession, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	cust, err := s.findOrCreateCustomer(email)
	if err != nil {
		return nil, err
	}

	if successURL == "" {
		successURL = s.frontendURL + "/alerts?subscription=success"
	}
	if cancelURL == "" {
		cancelURL = s.frontendURL + "/alerts?subscription=cancelled"
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(cust.ID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("email", email)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// VerifySubscription checks for an active subscription and, when the
// lookup succeeds, signs a session token carrying the outcome. The
// subscriber achievement is granted on the first positive check.
func (s *SubscriptionService) VerifySubscription(ctx context.Context, email string) (*VerifyResult, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	cust, err := s.findCustomer(email)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return &VerifyResult{IsSubscribed: false}, nil
	}

	sub, err := s.activeSubscription(cust.ID)
	if err != nil {
		return nil, err
	}
	isSubscribed := sub != nil

	token, err := s.signSessionToken(email, isSubscribed, cust.ID)
	if err != nil {
		return nil, err
	}

	if s.userService != nil {
		s.userService.MarkSubscriber(ctx, isSubscribed)
	}

	return &VerifyResult{
		IsSubscribed: isSubscribed,
		SessionToken: token,
		Subscription: sub,
	}, nil
}

// CancelSubscription schedules the caller's subscription to end at the
// current period's close.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, sessionToken string) (*CancelResult, error) {
	claims, err := s.parseSessionToken(sessionToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsSubscribed {
		return nil, ErrNoActiveSubscription
	}

	sub, err := s.activeSubscription(claims.CustomerID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSubscription
	}

	updated, err := subscription.Update(sub.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	return &CancelResult{
		Success:          true,
		CancelAt:         updated.CancelAt,
		CurrentPeriodEnd: updated.CurrentPeriodEnd,
	}, nil
}

// CreatePortalSession opens a Stripe billing-portal session for
// subscription management.
func (s *SubscriptionService) CreatePortalSession(ctx context.Context, sessionToken string) (string, error) {
	claims, err := s.parseSessionToken(sessionToken)
	if err != nil {
		return "", err
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(claims.CustomerID),
		ReturnURL: stripe.String(s.frontendURL + "/profile"),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *SubscriptionService) findCustomer(email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return nil, nil
}

func (s *SubscriptionService) findOrCreateCustomer(email string) (*stripe.Customer, error) {
	cust, err := s.findCustomer(email)
	if err != nil {
		return nil, err
	}
	if cust != nil {
		return cust, nil
	}

	cust, err = customer.New(&stripe.CustomerParams{Email: stripe.String(email)})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return cust, nil
}

func (s *SubscriptionService) activeSubscription(customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)
	iter := subscription.List(params)
	for iter.Next() {
		return iter.Subscription(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return nil, nil
}

func (s *SubscriptionService) signSessionToken(email string, isSubscribed bool, customerID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Email:        email,
		IsSubscribed: isSubscribed,
		CustomerID:   customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *SubscriptionService) parseSessionToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: session token is required", ErrInvalidInput)
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
