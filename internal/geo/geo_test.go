package geo

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeService counts hits and serves a fixed JSON body.
func fakeService(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestResolver(t *testing.T, primary, secondary *httptest.Server) *Resolver {
	t.Helper()
	r, err := NewResolver(primary.URL+"/%s", secondary.URL+"/%s", "")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

const primaryOK = `{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin","lat":52.52,"lon":13.4}`
const secondaryOK = `{"country_name":"France","city":"Paris","region":"Île-de-France","latitude":48.86,"longitude":2.35}`

func TestResolve_PrivateIPs_NoNetworkCall(t *testing.T) {
	primary, primaryCalls := fakeService(t, 200, primaryOK)
	secondary, secondaryCalls := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	for _, ip := range []string{"", "127.0.0.1", "::1", "192.168.1.50", "10.0.0.8", "172.16.31.9", "172.200.1.1"} {
		loc := r.Resolve(ip)
		if loc.Country != "Local" || loc.City != "Local" || loc.Region != "Local" {
			t.Errorf("ip %q: got %+v, want Local sentinel", ip, loc)
		}
		if loc.Latitude != nil || loc.Longitude != nil {
			t.Errorf("ip %q: expected nil coordinates", ip)
		}
	}

	if n := primaryCalls.Load(); n != 0 {
		t.Errorf("primary called %d times, want 0", n)
	}
	if n := secondaryCalls.Load(); n != 0 {
		t.Errorf("secondary called %d times, want 0", n)
	}
}

func TestResolve_PrimarySuccess(t *testing.T) {
	primary, _ := fakeService(t, 200, primaryOK)
	secondary, secondaryCalls := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "Germany" || loc.City != "Berlin" || loc.Region != "Berlin" {
		t.Errorf("got %+v, want Berlin result", loc)
	}
	if loc.Latitude == nil || *loc.Latitude != 52.52 {
		t.Errorf("latitude = %v, want 52.52", loc.Latitude)
	}
	if loc.Longitude == nil || *loc.Longitude != 13.4 {
		t.Errorf("longitude = %v, want 13.4", loc.Longitude)
	}
	if n := secondaryCalls.Load(); n != 0 {
		t.Errorf("secondary called %d times, want 0", n)
	}
}

func TestResolve_PrimaryHTTPError_FallsBack(t *testing.T) {
	primary, primaryCalls := fakeService(t, 500, `{}`)
	secondary, secondaryCalls := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "France" || loc.City != "Paris" {
		t.Errorf("got %+v, want Paris result from secondary", loc)
	}
	if n := primaryCalls.Load(); n != 1 {
		t.Errorf("primary called %d times, want 1", n)
	}
	if n := secondaryCalls.Load(); n != 1 {
		t.Errorf("secondary called %d times, want 1", n)
	}
}

func TestResolve_PrimaryReportedError_FallsBack(t *testing.T) {
	// ip-api signals failure in-band with HTTP 200
	primary, _ := fakeService(t, 200, `{"status":"fail","message":"reserved range"}`)
	secondary, secondaryCalls := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "France" {
		t.Errorf("country = %q, want France", loc.Country)
	}
	if n := secondaryCalls.Load(); n != 1 {
		t.Errorf("secondary called %d times, want 1", n)
	}
}

func TestResolve_BothFail_UnknownSentinel(t *testing.T) {
	primary, _ := fakeService(t, 503, `oops`)
	secondary, _ := fakeService(t, 200, `{"error":true,"reason":"rate limited"}`)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "Unknown" || loc.City != "Unknown" || loc.Region != "Unknown" {
		t.Errorf("got %+v, want Unknown sentinel", loc)
	}
	if loc.Latitude != nil || loc.Longitude != nil {
		t.Error("expected nil coordinates on Unknown sentinel")
	}
}

func TestResolve_NoPartialDataFromFailedPrimary(t *testing.T) {
	// Primary returns fields alongside an in-band error; none of them
	// may leak into the result.
	primary, _ := fakeService(t, 200, `{"status":"fail","message":"nope","country":"Atlantis","lat":1.0}`)
	secondary, _ := fakeService(t, 200, `{"error":true}`)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "Unknown" {
		t.Errorf("country = %q, want Unknown (no partial data)", loc.Country)
	}
	if loc.Latitude != nil {
		t.Error("latitude leaked from failed primary response")
	}
}

func TestResolve_MissingCoordinates_Nil(t *testing.T) {
	primary, _ := fakeService(t, 200, `{"status":"success","country":"Germany"}`)
	secondary, _ := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "Germany" {
		t.Errorf("country = %q, want Germany", loc.Country)
	}
	if loc.Latitude != nil || loc.Longitude != nil {
		t.Error("expected nil coordinates when service omits them")
	}
}

func TestResolve_MalformedJSON_FallsBack(t *testing.T) {
	primary, _ := fakeService(t, 200, `{not json`)
	secondary, _ := fakeService(t, 200, secondaryOK)
	r := newTestResolver(t, primary, secondary)

	loc := r.Resolve("203.0.113.7")
	if loc.Country != "France" {
		t.Errorf("country = %q, want France from secondary", loc.Country)
	}
}

func TestNewResolver_MissingMMDB_Error(t *testing.T) {
	if _, err := NewResolver("http://a/%s", "http://b/%s", "/does/not/exist.mmdb"); err == nil {
		t.Fatal("expected error for missing mmdb path")
	}
}
