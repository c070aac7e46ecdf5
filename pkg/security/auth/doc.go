/*
Package auth resolves the caller of a request.

A human session presents an HS256 access token in one of three places,
checked in order:

 1. Authorization: Bearer <token>
 2. the paracord_access cookie
 3. the token query parameter

Only the first present credential is validated; a bad bearer token is not
retried against the cookie. A valid token must also carry sid and jti
claims and be reported active by the SessionChecker.

Bots present "Authorization: Bot <token>". The token is hashed with
HashBotToken and looked up through BotLookup.

ResolveUser tries the session path, then the bot path. ResolveAdmin accepts
sessions only and requires the FlagAdmin bit:

	ex := auth.NewExtractor(cfg.Auth.JWTSecret, cfg.Auth.CookieName, db, db, db)
	mux.Handle("/api/v1/admin/", auth.RequireAdmin(ex)(adminHandler))
*/
package auth
