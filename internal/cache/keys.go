package cache

// Key builders live in one place so prefixes never drift between writers and
// the reconciler's scan.

const viewDeltaPrefix = "post:view:"

func KeyTokenVersion(userID string) string { return "user_token_version:" + userID }
func KeyRefreshToken(token string) string  { return "refresh_token:" + token }
func KeyRefreshSet(userID string) string   { return "refresh_set:" + userID }
func KeyUserRole(userID string) string     { return "user_role:" + userID }
func KeyVerifyCode(phone string) string    { return "verify_code:" + phone }
func KeyViewDelta(postID string) string    { return viewDeltaPrefix + postID }

// ViewDeltaPrefix is scanned by the reconciler to enumerate pending deltas.
func ViewDeltaPrefix() string { return viewDeltaPrefix }

// KeyHotPosts is the ranked hot-set.
const KeyHotPosts = "hot:posts"
