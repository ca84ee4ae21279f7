package version

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare orders versions numerically", t, func() {
		for _, c := range []struct {
			a, b string
			want int
		}{
			{"0.3.0", "0.3.0", 0},
			{"v0.10.0", "0.9.9", 1},
			{"1.0", "1.0.1", -1},
			{"1.2.0-rc1", "1.2.0", 0},
		} {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}
	})

	Convey("Compare rejects garbage", t, func() {
		_, err := Compare("latest", "0.3.0")
		So(err, ShouldNotBeNil)
		_, err = Compare("1.2.3.4", "0.3.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a releases endpoint", t, func() {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{"tag_name": "v0.4.1"}`))
		}))
		defer server.Close()

		previous := ReleasesAPI
		ReleasesAPI = server.URL
		defer func() { ReleasesAPI = previous }()
		_ = versionCacher().Set("")

		Convey("the tag is returned without its prefix and cached", func() {
			v, err := Latest()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.4.1")

			v, err = Latest()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.4.1")
			So(calls, ShouldEqual, 1)
		})
	})

	Convey("Release pages link to the tag", t, func() {
		So(ReleaseURL("0.4.1"), ShouldEqual, "https://github.com/pitchloop/pitchloop/releases/tag/v0.4.1")
	})
}
