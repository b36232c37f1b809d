// Package auth owns credential state for one account: bearer sessions issued
// by the login service, or locally signed OAuth1 sessions.
package auth

import "fmt"

// Credentials is either a PasswordCredential or an OAuthCredential.
type Credentials interface {
	AccountID() string
	validate() error
}

// PasswordCredential logs in through the login service to obtain a bearer token.
type PasswordCredential struct {
	Account  string
	Username string
	Password string
}

// AccountID implements Credentials.
func (c PasswordCredential) AccountID() string { return c.Account }

func (c PasswordCredential) validate() error {
	if c.Account == "" || c.Username == "" || c.Password == "" {
		return fmt.Errorf("password credentials need account, username and password")
	}
	return nil
}

// OAuthCredential signs every request with OAuth1; no login call is made.
type OAuthCredential struct {
	Account           string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// AccountID implements Credentials.
func (c OAuthCredential) AccountID() string { return c.Account }

func (c OAuthCredential) validate() error {
	if c.Account == "" || c.ConsumerKey == "" || c.ConsumerSecret == "" || c.AccessToken == "" || c.AccessTokenSecret == "" {
		return fmt.Errorf("oauth credentials need account, app key, app secret, access token and access token secret")
	}
	return nil
}
