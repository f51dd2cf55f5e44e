package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	hChat *ChatHandler,
	hUser *UserHandler,
	hPay *PaymentHandler,
	interpretPerMinute int,
) {
	r.Use(
		httputil.RecoverMiddleware,
		RequestID,
	)

	r.Get("/", Health)
	r.Get("/ping", Ping)

	r.Route("/api/v1", func(api chi.Router) {
		// --- толкование ---
		api.With(httprate.LimitByIP(interpretPerMinute, time.Minute)).
			Post("/chat/interpret", hChat.Interpret)

		// --- пользователи ---
		api.Post("/users/", hUser.Login)
		api.Get("/users/{id}/history", hUser.History)
		api.Get("/users/{id}/history/export", hUser.Export)

		// --- оплата ---
		api.Post("/payment/create_invoice", hPay.CreateInvoice)
	})
}
