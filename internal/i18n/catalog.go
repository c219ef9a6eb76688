package i18n

// Backend business error codes. These mirror the server's error table;
// the code is stable across releases even when the server message
// wording changes.
const (
	codeInvalidCredentials = 10001
	codeUserExists         = 10002
	codeCodeInvalid        = 10003
	codeCodeExpired        = 10004
	codeUserNotFound       = 10005
	codePasswordWeak       = 10006
	codeProviderBound      = 10007
	codeLastLoginMethod    = 10008
	codeBookNotFound       = 20001
	codeNoWordsDue         = 20002
)

var enMessages = map[string]string{
	"error.session_expired":  "Your session has expired. Please log in again.",
	"error.not_logged_in":    "You are not logged in.",
	"error.resend_throttled": "A code was already sent. Please wait before requesting another.",

	"home.practice": "Start practice",
	"home.books":    "Word books",
	"home.settings": "Settings",
	"home.logout":   "Log out",
	"home.quit":     "Quit",

	"login.title":    "Sign in to iSpell",
	"login.email":    "Email",
	"login.password": "Password",
	"login.remember": "Remember me",
	"login.submit":   "Sign in",

	"practice.correct":  "Correct!",
	"practice.wrong":    "Not quite. Try again.",
	"practice.complete": "Session complete",
	"practice.empty":    "Nothing due today. Well done!",

	"summary.accuracy": "Accuracy",
	"summary.words":    "Words",
	"summary.failed":   "Needs review",

	"settings.accent":       "Pronunciation",
	"settings.daily_new":    "New words per day",
	"settings.daily_review": "Reviews per day",
	"settings.saved":        "Settings saved.",
}

var enErrCodes = map[int]string{
	codeInvalidCredentials: "Incorrect email or password.",
	codeUserExists:         "An account with this email already exists.",
	codeCodeInvalid:        "That verification code is not valid.",
	codeCodeExpired:        "That verification code has expired. Request a new one.",
	codeUserNotFound:       "No account found for this email.",
	codePasswordWeak:       "Password is too weak. Use at least 8 characters.",
	codeProviderBound:      "This account is already linked to that provider.",
	codeLastLoginMethod:    "Cannot unlink your only sign-in method.",
	codeBookNotFound:       "Word book not found.",
	codeNoWordsDue:         "No words are due right now.",
}

var zhMessages = map[string]string{
	"error.session_expired":  "登录已过期，请重新登录。",
	"error.not_logged_in":    "尚未登录。",
	"error.resend_throttled": "验证码已发送，请稍后再试。",

	"home.practice": "开始练习",
	"home.books":    "单词书",
	"home.settings": "设置",
	"home.logout":   "退出登录",
	"home.quit":     "退出",

	"login.title":    "登录 iSpell",
	"login.email":    "邮箱",
	"login.password": "密码",
	"login.remember": "记住我",
	"login.submit":   "登录",

	"practice.correct":  "正确！",
	"practice.wrong":    "再试一次。",
	"practice.complete": "练习完成",
	"practice.empty":    "今日无待学单词，干得漂亮！",

	"summary.accuracy": "正确率",
	"summary.words":    "单词数",
	"summary.failed":   "需要复习",

	"settings.accent":       "发音",
	"settings.daily_new":    "每日新词",
	"settings.daily_review": "每日复习",
	"settings.saved":        "设置已保存。",
}

var zhErrCodes = map[int]string{
	codeInvalidCredentials: "邮箱或密码错误。",
	codeUserExists:         "该邮箱已注册。",
	codeCodeInvalid:        "验证码不正确。",
	codeCodeExpired:        "验证码已过期，请重新获取。",
	codeUserNotFound:       "未找到该邮箱对应的账号。",
	codePasswordWeak:       "密码强度不足，至少需要 8 位。",
	codeProviderBound:      "该账号已绑定此第三方平台。",
	codeLastLoginMethod:    "不能解绑唯一的登录方式。",
	codeBookNotFound:       "未找到该单词书。",
	codeNoWordsDue:         "当前没有待学单词。",
}
