package util

import "net/url"

// URLJoin resolves relative against base, so that joining
// "http://localhost:8000" with "/trigger_payment" yields a full request URL
func URLJoin(base, relative string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	relativeURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relativeURL).String(), nil
}
