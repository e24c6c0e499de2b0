// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

//go:build integration

package flow_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/auth"
	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/notify"
	"github.com/tokentemplate/authclient/internal/route"
	"github.com/tokentemplate/authclient/internal/session"
)

// client is one application run over a shared session file.
type client struct {
	sessions *session.Manager
	router   *route.Router
	sink     *notify.Recorder
	service  *auth.Service
	watch    *session.Subscription
}

func openClient(baseURL, sessionPath string) *client {
	store, err := kvstore.NewFileStore(sessionPath)
	Expect(err).NotTo(HaveOccurred())

	transport, err := api.New(api.Config{BaseURL: baseURL, RetryBase: 10 * time.Millisecond})
	Expect(err).NotTo(HaveOccurred())

	c := &client{
		sessions: session.NewManager(store),
		sink:     &notify.Recorder{},
	}
	guard, err := route.NewGuard(c.sessions, nil)
	Expect(err).NotTo(HaveOccurred())
	c.router = route.NewRouter(guard, nil)
	for _, p := range []string{route.PathHome, "home", route.PathLogin, route.PathSignup, route.PathResetPassword, route.PathNewPassword} {
		c.router.Handle(p, nil)
	}

	c.service, err = auth.NewService(transport, c.sessions, c.sink, c.router, nil)
	Expect(err).NotTo(HaveOccurred())
	c.watch = c.service.WatchExpiry()
	return c
}

func (c *client) close() {
	c.watch.Unsubscribe()
	c.sessions.Close()
}

var _ = Describe("Authentication flows", func() {
	var (
		ctx         context.Context
		server      *userAPI
		sessionPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = newUserAPI(3600)
		sessionPath = filepath.Join(GinkgoT().TempDir(), "session.json")
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("signup then login", func() {
		It("persists the session for the next run", func() {
			first := openClient(server.BaseURL(), sessionPath)
			defer first.close()

			Expect(first.service.CreateUser(ctx, "ada@example.com", "pw-1")).To(Succeed())
			Expect(first.router.Current()).To(Equal(route.PathLogin))

			Expect(first.service.Login(ctx, "ada@example.com", "pw-1")).To(Succeed())
			Expect(first.router.Current()).To(Equal(route.PathHome))
			Expect(first.sessions.IsAuthenticated()).To(BeTrue())

			second := openClient(server.BaseURL(), sessionPath)
			defer second.close()

			Expect(second.sessions.Restore(ctx)).To(BeTrue())
			Expect(second.sessions.Token()).To(Equal("token-for-ada@example.com"))
			Expect(second.sessions.UserID()).To(Equal("id-ada@example.com"))
			Expect(second.sessions.ExpiresAt()).To(BeTemporally("~", time.Now().Add(time.Hour), 5*time.Second))
		})

		It("rejects a wrong password and stays logged out", func() {
			c := openClient(server.BaseURL(), sessionPath)
			defer c.close()

			Expect(c.service.CreateUser(ctx, "ada@example.com", "pw-1")).To(Succeed())

			var events []session.Event
			c.sessions.Subscribe(func(ev session.Event) { events = append(events, ev) })

			Expect(c.service.Login(ctx, "ada@example.com", "nope")).NotTo(Succeed())
			Expect(events).To(Equal([]session.Event{{Kind: session.KindAuthFailed, Authenticated: false}}))

			last, ok := c.sink.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Kind).To(Equal(notify.KindError))
			Expect(last.Body).To(Equal("Invalid authentication credentials!"))
		})
	})

	Describe("logout", func() {
		It("erases the session so the next run starts logged out", func() {
			c := openClient(server.BaseURL(), sessionPath)
			Expect(c.service.CreateUser(ctx, "ada@example.com", "pw-1")).To(Succeed())
			Expect(c.service.Login(ctx, "ada@example.com", "pw-1")).To(Succeed())
			c.service.Logout(ctx)
			c.close()

			next := openClient(server.BaseURL(), sessionPath)
			defer next.close()
			Expect(next.sessions.Restore(ctx)).To(BeFalse())

			shown, err := next.router.Navigate(ctx, "home")
			Expect(err).NotTo(HaveOccurred())
			Expect(shown).To(Equal(route.PathLogin))
		})
	})

	Describe("expiry", func() {
		It("clears the session, notifies and returns to login when the token lapses", func() {
			server.setExpiresIn(1)

			c := openClient(server.BaseURL(), sessionPath)
			defer c.close()

			Expect(c.service.CreateUser(ctx, "ada@example.com", "pw-1")).To(Succeed())
			Expect(c.service.Login(ctx, "ada@example.com", "pw-1")).To(Succeed())
			Expect(c.router.Current()).To(Equal(route.PathHome))

			Eventually(c.sessions.IsAuthenticated, 3*time.Second, 20*time.Millisecond).Should(BeFalse())
			Eventually(c.router.Current, time.Second, 20*time.Millisecond).Should(Equal(route.PathLogin))
			Eventually(c.sink.Kinds, time.Second, 20*time.Millisecond).Should(ContainElement(notify.KindSessionExpired))

			next := openClient(server.BaseURL(), sessionPath)
			defer next.close()
			Expect(next.sessions.Restore(ctx)).To(BeFalse())
		})
	})

	Describe("password reset", func() {
		It("resets the password through the emailed token", func() {
			c := openClient(server.BaseURL(), sessionPath)
			defer c.close()

			Expect(c.service.CreateUser(ctx, "ada@example.com", "old")).To(Succeed())
			Expect(c.service.RequestPasswordReset(ctx, "ada@example.com", "http://localhost:4200")).To(Succeed())
			Expect(c.service.NewPassword(ctx, "reset-ada@example.com", "new")).To(Succeed())
			Expect(c.router.Current()).To(Equal(route.PathLogin))

			Expect(c.service.Login(ctx, "ada@example.com", "old")).NotTo(Succeed())
			Expect(c.service.Login(ctx, "ada@example.com", "new")).To(Succeed())
		})

		It("reports an unknown token without submitting", func() {
			c := openClient(server.BaseURL(), sessionPath)
			defer c.close()

			Expect(c.service.NewPassword(ctx, "reset-nobody", "new")).NotTo(Succeed())
			last, ok := c.sink.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Body).To(Equal("Token not found"))
		})
	})
})
