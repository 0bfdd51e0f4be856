package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimit(t *testing.T) {
	tCases := []struct {
		name     string
		rps      float64
		burst    int
		requests int
		want     []int
	}{
		{
			name:     "disabled",
			rps:      0,
			burst:    1,
			requests: 3,
			want:     []int{http.StatusOK, http.StatusOK, http.StatusOK},
		},
		{
			name:     "burst_exhausted",
			rps:      0.001,
			burst:    2,
			requests: 3,
			want:     []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:     "zero_burst",
			rps:      0.001,
			burst:    0,
			requests: 2,
			want:     []int{http.StatusOK, http.StatusTooManyRequests},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			h := RateLimit(tCase.rps, tCase.burst)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			got := make([]int, 0, tCase.requests)
			for i := 0; i < tCase.requests; i++ {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order-webhook", nil))
				got = append(got, rec.Code)
			}

			require.Equal(t, tCase.want, got)
		})
	}
}
