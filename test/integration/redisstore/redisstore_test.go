// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

//go:build integration

package redisstore_test

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/session"
)

// openStore connects a store under a fresh prefix so specs do not share keys.
func openStore(prefix string) *kvstore.RedisStore {
	store, err := kvstore.NewRedisStore(env.ctx, kvstore.RedisOptions{
		Addr:   env.addr,
		Prefix: prefix,
	})
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(store.Close)
	return store
}

func freshPrefix() string {
	return "authclient-test:" + ulid.Make().String() + ":"
}

var _ = Describe("RedisStore", func() {
	var prefix string

	BeforeEach(func() {
		prefix = freshPrefix()
	})

	It("stores, replaces and removes values", func() {
		store := openStore(prefix)

		Expect(store.Set(env.ctx, "token", "abc")).To(Succeed())
		Expect(store.Set(env.ctx, "token", "def")).To(Succeed())
		Expect(store.Get(env.ctx, "token")).To(Equal("def"))

		Expect(store.Remove(env.ctx, "token")).To(Succeed())
		_, err := store.Get(env.ctx, "token")
		Expect(errors.Is(err, kvstore.ErrNotFound)).To(BeTrue())

		Expect(store.Remove(env.ctx, "token")).To(Succeed(), "removing a missing key succeeds")
	})

	It("keeps prefixes apart", func() {
		a := openStore(prefix)
		b := openStore(freshPrefix())

		Expect(a.Set(env.ctx, "userId", "user-a")).To(Succeed())

		_, err := b.Get(env.ctx, "userId")
		Expect(errors.Is(err, kvstore.ErrNotFound)).To(BeTrue())
	})

	It("fails to connect to a closed port", func() {
		_, err := kvstore.NewRedisStore(env.ctx, kvstore.RedisOptions{Addr: "127.0.0.1:1"})
		Expect(err).To(HaveOccurred())
	})

	Describe("as session storage", func() {
		It("restores a session written by another client", func() {
			first := session.NewManager(openStore(prefix))
			DeferCleanup(first.Close)
			Expect(first.Login(env.ctx, "abc123", time.Hour, "user-1")).To(Succeed())

			second := session.NewManager(openStore(prefix))
			DeferCleanup(second.Close)
			Expect(second.Restore(env.ctx)).To(BeTrue())
			Expect(second.Token()).To(Equal("abc123"))
			Expect(second.UserID()).To(Equal("user-1"))
		})

		It("forgets the session everywhere after logout", func() {
			first := session.NewManager(openStore(prefix))
			DeferCleanup(first.Close)
			Expect(first.Login(env.ctx, "abc123", time.Hour, "user-1")).To(Succeed())
			first.Logout(env.ctx)

			second := session.NewManager(openStore(prefix))
			DeferCleanup(second.Close)
			Expect(second.Restore(env.ctx)).To(BeFalse())
		})
	})
})
