package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/aether/internal/domain/account"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedgerClient(t *testing.T) {
	Convey("Given a ledger client", t, func() {
		ctx := context.Background()

		Convey("When the ledger accepts the transaction", func() {
			var got account.Transaction
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				_, _ = w.Write([]byte(`{"fex":5,"su":2,"staked":0,"skill_tree":{"knowledge":1}}`))
			}))
			defer srv.Close()

			c := NewLedgerClient(srv.URL + "/")
			acc, err := c.ApplyTransaction(ctx, account.Transaction{AccountID: "u1", Type: account.TypePoccReward, FexReward: 5, SUReward: 2, Skill: "knowledge"})

			Convey("Then the body round-trips and the account is decoded", func() {
				So(err, ShouldBeNil)
				So(got.AccountID, ShouldEqual, "u1")
				So(got.Type, ShouldEqual, account.TypePoccReward)
				So(acc.Fex, ShouldEqual, 5)
				So(acc.SkillTree.Level("knowledge"), ShouldEqual, 1)
			})
		})

		Convey("When the ledger answers with a non-2xx status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", http.StatusBadRequest)
			}))
			defer srv.Close()

			_, err := NewLedgerClient(srv.URL).ApplyTransaction(ctx, account.Transaction{AccountID: "u1"})

			Convey("Then a StatusError with the code is returned", func() {
				So(errors.Is(err, ErrStatus), ShouldBeTrue)
				var se *StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Code, ShouldEqual, http.StatusBadRequest)
				So(KindOf(err), ShouldEqual, KindStatus)
			})
		})

		Convey("When the ledger answers with garbage", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			}))
			defer srv.Close()

			_, err := NewLedgerClient(srv.URL).ApplyTransaction(ctx, account.Transaction{AccountID: "u1"})

			Convey("Then ErrDecode is returned", func() {
				So(errors.Is(err, ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the ledger is too slow", func() {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			defer close(release)

			_, err := NewLedgerClient(srv.URL, WithTimeout(50*time.Millisecond)).ApplyTransaction(ctx, account.Transaction{AccountID: "u1"})

			Convey("Then ErrTimeout is returned", func() {
				So(errors.Is(err, ErrTimeout), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindTimeout)
			})
		})

		Convey("When nothing listens at the address", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			_, err := NewLedgerClient(url).ApplyTransaction(ctx, account.Transaction{AccountID: "u1"})

			Convey("Then ErrConnection is returned", func() {
				So(errors.Is(err, ErrConnection), ShouldBeTrue)
			})
		})
	})
}

func TestWeaverClient(t *testing.T) {
	Convey("Given a weaver client", t, func() {
		var got TuneRequest
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"status":"tuned"}`))
		}))
		defer srv.Close()

		err := NewWeaverClient(srv.URL).Tune(context.Background(), "u1", EventPoccSuccess)

		Convey("Then the tune request carries the account and event", func() {
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/tune")
			So(got, ShouldResemble, TuneRequest{AccountID: "u1", Event: EventPoccSuccess})
		})
	})
}
