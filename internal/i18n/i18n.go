// Package i18n holds the message catalog used by rendered pages.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the languages the catalog has translations for; the first is the fallback.
var Supported = []language.Tag{language.English, language.Russian}

var (
	builder = catalog.NewBuilder(catalog.Fallback(language.English))
	matcher = language.NewMatcher(Supported)
)

// Message keys are the English text itself.
var russian = [][2]string{
	{"Latest updates on the site", "Последние обновления на сайте"},
	{"Home", "Главная"},
	{"New post", "Новая запись"},
	{"Edit post", "Редактировать запись"},
	{"Edit", "Редактировать"},
	{"Publish", "Опубликовать"},
	{"Save", "Сохранить"},
	{"Text", "Текст"},
	{"Group", "Группа"},
	{"Image", "Картинка"},
	{"Clear", "Очистить"},
	{"Currently", "На данный момент"},
	{"Select a group", "Выберите группу"},
	{"Follow", "Подписаться"},
	{"Unfollow", "Отписаться"},
	{"Followers", "Подписчики"},
	{"Following", "Подписки"},
	{"Posts", "Записи"},
	{"Comments", "Комментарии"},
	{"Add a comment", "Добавить комментарий"},
	{"Send", "Отправить"},
	{"Log in", "Войти"},
	{"Log out", "Выйти"},
	{"Sign up", "Регистрация"},
	{"Username", "Имя пользователя"},
	{"Password", "Пароль"},
	{"Password confirmation", "Подтверждение пароля"},
	{"First name", "Имя"},
	{"Last name", "Фамилия"},
	{"Email address", "Адрес электронной почты"},
	{"Posts by authors you follow", "Записи авторов, на которых вы подписаны"},
	{"No posts yet.", "Записей пока нет."},
	{"Previous", "Назад"},
	{"Next", "Вперёд"},
	{"Page %d of %d", "Страница %d из %d"},
	{"Page not found", "Страница не найдена"},
	{"The page you requested does not exist.", "Запрошенная страница не существует."},
	{"Server error", "Ошибка сервера"},
	{"Something went wrong on our side.", "Что-то пошло не так на нашей стороне."},
	{"Invalid username or password.", "Неверное имя пользователя или пароль."},
	{"The two password fields didn't match.", "Пароли не совпадают."},
	{"This field is required.", "Обязательное поле."},
	{"A user with that username already exists.", "Пользователь с таким именем уже существует."},
	{"Upload a valid image. The file you uploaded was either not an image or a corrupted image.", "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."},
	{"The submitted file is empty.", "Отправленный файл пуст."},
	{"Select a valid choice.", "Выберите корректный вариант."},
	{"Author", "Автор"},
	{"All posts in group", "Все записи группы"},
}

func init() {
	for _, m := range russian {
		_ = builder.SetString(language.English, m[0], m[0])
		_ = builder.SetString(language.Russian, m[0], m[1])
	}
}

// Match resolves a configured language name to a supported tag.
func Match(lang string) language.Tag {
	tag, _, _ := matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	for _, s := range Supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return language.English
}

// NewPrinter returns a printer for lang backed by the application catalog.
// Unknown keys are printed as given.
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Match(lang), message.Catalog(builder))
}
