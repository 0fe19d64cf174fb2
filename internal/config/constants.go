package config

const (
	// DefaultDatabasePath is the default SQLite file for the application database
	DefaultDatabasePath = "./wordtrack.db"

	DefaultSessionCookieName = "wordtrack_session"

	// DefaultGoogleUserInfoURL resolves an access token to the account's email and name
	DefaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	// DefaultGoogleTokenInfoURL reports the client an access token was issued to
	DefaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

	// DefaultDictionaryBaseURL is the Free Dictionary API; the language tag is appended per lookup
	DefaultDictionaryBaseURL = "https://api.dictionaryapi.dev/api/v2/entries"
)
