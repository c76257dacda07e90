/*
Copyright 2025 Candleworks Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package carrier

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/candleworks/fulfil/internal/request"
	"github.com/pkg/errors"
)

// CredentialProvider holds the carrier API key and verifies it against the
// carrier account endpoint exactly once per process. It is constructed
// explicitly and injected into the client; there is no module-level key cache.
type CredentialProvider struct {
	apiKey  string
	baseURL string
	timeout time.Duration

	once      sync.Once
	verifyErr error
}

func NewCredentialProvider(apiKey, baseURL string, timeout time.Duration) *CredentialProvider {
	return &CredentialProvider{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

// Verify performs a cheap authenticated call to prove the key works. The
// result is memoized: every caller after the first gets the stored outcome.
func (p *CredentialProvider) Verify(ctx context.Context) error {
	p.once.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/carrier_accounts", p.baseURL), nil)
		if err != nil {
			p.verifyErr = err
			return
		}
		req.Header.Set("Authorization", "Basic "+request.BasicAuth(p.apiKey, ""))

		var response interface{}
		resp, err := request.CallWithTimeout(req, &response, p.timeout)
		if err != nil {
			p.verifyErr = errors.Wrap(err, "carrier credential check failed")
			return
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			p.verifyErr = errors.Errorf("carrier rejected API key (status %d)", resp.StatusCode)
		}
	})
	return p.verifyErr
}

// Key returns the raw API key for request signing.
func (p *CredentialProvider) Key() string {
	return p.apiKey
}
