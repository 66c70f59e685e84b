package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("Then / serves the landing page", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "Jitsu Academy")
			So(w.Body.String(), ShouldContainSubstring, "/api-docs")
		})

		Convey("And the page is reachable under /site/", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/site/index.html", nil))

			// FileServer redirects explicit index.html requests to the directory.
			So(w.Code, ShouldEqual, http.StatusMovedPermanently)
		})

		Convey("And unknown paths are not swallowed by the root route", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And POST / is rejected", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then Register panics", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestFS(t *testing.T) {
	Convey("Given the embedded file system", t, func() {
		f, err := FS().Open("index.html")

		Convey("Then index.html is present", func() {
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)
		})
	})
}
