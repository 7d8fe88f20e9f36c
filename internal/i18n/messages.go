// Package i18n holds the user-visible messages and negotiates the caller's
// language from the Accept-Language header.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Key string

const (
	FollowSelf      Key = "follow.self"
	FollowExists    Key = "follow.exists"
	FollowCreated   Key = "follow.created"
	FollowMissing   Key = "follow.missing"
	FollowRemoved   Key = "follow.removed"
	UserNotFound    Key = "user.not_found"
	Unauthorized    Key = "auth.unauthorized"
	InvalidToken    Key = "auth.invalid_token"
	InvalidRequest  Key = "request.invalid"
	StoreTimeout    Key = "store.timeout"
	InternalError   Key = "internal"
	LikeExists      Key = "like.exists"
	LikeMissing     Key = "like.missing"
	LikeRemoved     Key = "like.removed"
	PostNotFound    Key = "post.not_found"
	CommentNotFound Key = "comment.not_found"
	Forbidden       Key = "forbidden"
	BadCredentials  Key = "auth.bad_credentials"
	EmailTaken      Key = "user.email_taken"

	InvalidUserID         Key = "request.invalid_user_id"
	InvalidCommentID      Key = "request.invalid_comment_id"
	InvalidNotificationID Key = "request.invalid_notification_id"
	NotificationNotFound  Key = "notification.not_found"
	FirebaseNoEmail       Key = "auth.firebase_no_email"
	EmailNotVerified      Key = "auth.email_not_verified"
	// ValidationFailed takes the list of failed fields.
	ValidationFailed Key = "request.validation_failed"
)

// Supported lists the catalog languages; the first one is the fallback.
var Supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(Supported)

var catalog = map[Key][2]string{
	FollowSelf:      {"You cannot follow yourself", "Вы не можете подписаться на самого себя"},
	FollowExists:    {"Already following this user", "Подписка уже существует"},
	FollowCreated:   {"Followed successfully", "Подписка успешно создана"},
	FollowMissing:   {"You are not following this user", "Вы не подписаны на этого пользователя"},
	FollowRemoved:   {"Unfollowed successfully", "Вы отписались"},
	UserNotFound:    {"User not found", "Пользователь не найден"},
	Unauthorized:    {"Unauthorized", "Не авторизован!"},
	InvalidToken:    {"Invalid token", "Неверный токен"},
	InvalidRequest:  {"Invalid request payload", "Некорректный запрос"},
	StoreTimeout:    {"The request timed out, please retry", "Время ожидания истекло, повторите попытку"},
	InternalError:   {"Internal server error", "Внутренняя ошибка сервера"},
	LikeExists:      {"Post already liked", "Вы уже поставили лайк этому посту"},
	LikeMissing:     {"You have not liked this post", "Вы не ставили лайк этому посту"},
	LikeRemoved:     {"Like removed", "Лайк удалён"},
	PostNotFound:    {"Post not found", "Пост не найден"},
	CommentNotFound: {"Comment not found", "Комментарий не найден"},
	Forbidden:       {"Access denied", "Нет доступа"},
	BadCredentials:  {"Invalid email or password", "Неверный логин или пароль"},
	EmailTaken:      {"Email is already in use", "Почта уже используется"},

	InvalidUserID:         {"Invalid user ID", "Некорректный ID пользователя"},
	InvalidCommentID:      {"Invalid comment ID", "Некорректный ID комментария"},
	InvalidNotificationID: {"Invalid notification ID", "Некорректный ID уведомления"},
	NotificationNotFound:  {"Notification not found", "Уведомление не найдено"},
	FirebaseNoEmail:       {"Firebase account has no email", "У аккаунта Firebase нет почты"},
	EmailNotVerified:      {"Email is not verified", "Почта не подтверждена"},
	ValidationFailed:      {"validation failed: %s", "ошибка валидации: %s"},
}

func init() {
	for key, tr := range catalog {
		for i, tag := range Supported {
			if err := message.SetString(tag, string(key), tr[i]); err != nil {
				panic(err)
			}
		}
	}
}

// Match picks the best supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// T renders key in the given language.
func T(tag language.Tag, key Key) string {
	return message.NewPrinter(tag).Sprintf(string(key))
}

// Tf renders a key whose message takes arguments.
func Tf(tag language.Tag, key Key, args ...interface{}) string {
	return message.NewPrinter(tag).Sprintf(string(key), args...)
}
