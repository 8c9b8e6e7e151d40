package render

import "github.com/mmynk/secretsanta/internal/models"

var catalogs = map[models.Language]map[Key]string{
	models.LanguagePrimary:   ru,
	models.LanguageSecondary: en,
}

var ru = map[Key]string{
	JoinNotice: "👋 Новый участник *%s* присоединился к вашей игре *%s*!",
	DrawNotice: "🎅 Тайный Санта для игры *%s*\n\n" +
		"Вы дарите подарок: *%s*\n\n" +
		"🎁 Пожелания получателя:\n%s\n\n" +
		"💰 Бюджет: %s\n" +
		"📅 Дата обмена: %s\n\n" +
		"Удачи в выборе подарка! 🎄",
	MessageNotice:      "📨 Новое анонимное сообщение в игре *%s*:\n\n%s",
	GiftSentNotice:     "🎉 Отличные новости!\n\nВаш Тайный Санта отправил вам подарок! 🎁\nСкоро он будет у вас!\n\nИгра: *%s*",
	RatingNotice:       "🎉 Ваш подарок получил оценку!\n\n🏆 Оценка: %s (%d/5)\nИгра: *%s*",
	RatingFeedbackLine: "💬 Отзыв: %s",
	ReminderThreeDays: "🎅 Напоминание о Тайном Санте!\n\n" +
		"Игра: *%s*\n" +
		"До обмена подарками осталось *3 дня*! 🎄\n" +
		"Дата: %s\n\n" +
		"Не забудьте подготовить подарок! 🎁",
	ReminderOneDay: "🎅 Срочное напоминание!\n\n" +
		"Игра: *%s*\n" +
		"Обмен подарками *завтра*! ⏰\n" +
		"Дата: %s\n\n" +
		"Убедитесь, что подарок готов! 🎁",

	Welcome: "🎅 Добро пожаловать в Тайного Санту!",
	Help: "🎅 *Тайный Санта - Помощь* 🎅\n\n" +
		"register - зарегистрироваться\n" +
		"create-game - создать игру\n" +
		"join-game - присоединиться к игре\n" +
		"list-my-games - мои игры\n" +
		"draw <ID> - провести жеребьевку (организатор)\n" +
		"reset-draw <ID> - сбросить жеребьевку (организатор)\n" +
		"send-message - анонимное сообщение\n" +
		"list-messages - непрочитанные сообщения\n" +
		"confirm-gift-sent <ID> - подарок отправлен\n" +
		"confirm-gift-received <ID> - подарок получен\n" +
		"gift-status <ID> - статус подарков\n" +
		"rate-gift <ID> - оценить подарок\n" +
		"reminder-settings - вкл/выкл напоминания\n" +
		"set-language <ru|en> - язык\n" +
		"cancel - отменить текущее действие\n\n" +
		"Для жеребьевки нужно минимум 3 участника.",
	AskName:               "📝 Как вас зовут? Это имя увидит ваш Тайный Санта.",
	AskWishes:             "Приятно познакомиться, %s! 🎁 Напишите ваши пожелания к подарку.",
	Registered:            "🎉 Поздравляем! Вы успешно зарегистрированы!",
	AskGameName:           "🎮 Введите название игры:",
	AskBudget:             "💰 Укажите бюджет подарка (например, 20-30):",
	AskDate:               "📅 Укажите дату обмена (ДД.ММ.ГГГГ):",
	GameCreated:           "🎉 Игра '%s' успешно создана!\nID игры: %s",
	ChooseJoinGame:        "🎮 Выберите игру:",
	JoinOption:            "%s · 📅 %s · 👥 %d",
	NoJoinableGames:       "😔 Нет доступных игр для присоединения.",
	Joined:                "✅ Вы присоединились к игре *%s*!",
	MyGamesHeader:         "🎮 *Ваши игры:*",
	MyGamesEmpty:          "У вас пока нет игр.",
	MyGameLine:            "\n*%s* (ID: %s)\n💰 %s · 📅 %s · 👥 %d\n%s · %s",
	StatusDrawn:           "🎲 жеребьевка проведена",
	StatusWaiting:         "⏳ ожидание жеребьевки",
	RoleOrganizer:         "👑 организатор",
	RoleParticipant:       "🎅 участник",
	DrawDone:              "🎉 Жеребьевка для игры '%s' проведена! Участников: %d. Все получили уведомления.",
	ResetDone:             "🔄 Жеребьевка для игры '%s' сброшена.",
	ChooseMessageGame:     "📨 Выберите игру:",
	NoCounterparts:        "😔 Нет игр с проведенной жеребьевкой.",
	CounterpartReceiver:   "%s: вашему получателю",
	CounterpartSanta:      "%s: вашему Тайному Санте",
	AskMessageText:        "✍️ Напишите сообщение:",
	MessageSent:           "✅ Сообщение отправлено анонимно!",
	NoMessages:            "📭 Новых сообщений нет.",
	MessagesHeader:        "📬 *Новые сообщения: %d*",
	MessageLine:           "\n🎮 %s · %s\n%s",
	GiftSentConfirmed:     "✅ Отправка подарка в игре '%s' подтверждена!",
	GiftReceivedConfirmed: "✅ Получение подарка в игре '%s' подтверждено!",
	AskRating:             "⭐ Оцените подарок от 1 до 5:",
	AskFeedback:           "💬 Оставьте отзыв или отправьте skip:",
	RatingSaved:           "🙏 Спасибо! Ваша оценка: %s",
	GiftStatusHeader:      "🎁 *Статус подарков в игре %s:*",
	GiftStatusLine:        "%s: отправлен %s · получен %s",
	RemindersOn:           "🔔 Напоминания включены.",
	RemindersOff:          "🔕 Напоминания выключены.",
	LanguageSet:           "🇷🇺 Язык изменен на русский.",
	Cancelled:             "❌ Действие отменено.",
	NothingToCancel:       "Нечего отменять.",
	NoActiveFlow:          "Используйте help, чтобы увидеть список команд.",
	UnknownCommand:        "❓ Неизвестная команда: %s",
	DeliveryWarning:       "⚠️ Не удалось доставить уведомление, но изменения сохранены.",
	ErrorReply:            "❌ %s",

	ErrorValidation:    "Некорректный ввод.",
	ErrorPermission:    "Недостаточно прав.",
	ErrorState:         "Сейчас это действие недоступно.",
	ErrorNotFound:      "Ничего не найдено.",
	ErrorDrawExhausted: "Не удалось провести жеребьевку, попробуйте еще раз.",
	ErrorInternal:      "Что-то пошло не так, попробуйте позже.",

	ErrorMissingValue:        "Ответ не может быть пустым.",
	ErrorBadDate:             "Неверный формат даты. Используйте ДД.ММ.ГГГГ или ГГГГ-ММ-ДД.",
	ErrorBadRating:           "Оценка должна быть числом от 1 до 5.",
	ErrorEmptyFeedback:       "Отзыв пустой. Напишите текст или отправьте skip.",
	ErrorNothingToSkip:       "Этот шаг нельзя пропустить.",
	ErrorUnsupportedLanguage: "Доступные языки: ru, en.",
	ErrorMissingGameID:       "Укажите ID игры.",
	ErrorAlreadyRegistered:   "Вы уже зарегистрированы.",
	ErrorNotRegistered:       "Сначала зарегистрируйтесь: register.",
	ErrorNotOrganizer:        "Только организатор может это сделать.",
	ErrorTooFewParticipants:  "Для жеребьевки нужно минимум 3 участника.",
	ErrorAlreadyDrawn:        "Жеребьевка в этой игре уже проведена.",
	ErrorNotDrawn:            "Жеребьевка в этой игре еще не проведена.",
	ErrorDrawConflict:        "Состав игры изменился во время жеребьевки, попробуйте еще раз.",
	ErrorAlreadyJoined:       "Вы уже участвуете в этой игре.",
	ErrorGameClosed:          "Эта игра завершена.",
	ErrorNothingToRate:       "Сначала подтвердите получение подарка.",
	ErrorGameNotFound:        "Игра не найдена.",
	ErrorNotParticipant:      "Вы не участвуете в этой игре.",
	ErrorNoCounterpart:       "В этой игре пока некому написать.",
	ErrorUnknownOption:       "Выберите один из предложенных вариантов.",
}

var en = map[Key]string{
	JoinNotice: "👋 New participant *%s* joined your game *%s*!",
	DrawNotice: "🎅 Secret Santa for game *%s*\n\n" +
		"You are gifting to: *%s*\n\n" +
		"🎁 Recipient's wishes:\n%s\n\n" +
		"💰 Budget: %s\n" +
		"📅 Exchange date: %s\n\n" +
		"Good luck choosing a gift! 🎄",
	MessageNotice:      "📨 New anonymous message in game *%s*:\n\n%s",
	GiftSentNotice:     "🎉 Great news!\n\nYour Secret Santa sent you a gift! 🎁\nIt will be with you soon!\n\nGame: *%s*",
	RatingNotice:       "🎉 Your gift received a rating!\n\n🏆 Rating: %s (%d/5)\nGame: *%s*",
	RatingFeedbackLine: "💬 Feedback: %s",
	ReminderThreeDays: "🎅 Secret Santa Reminder!\n\n" +
		"Game: *%s*\n" +
		"*3 days* left until gift exchange! 🎄\n" +
		"Date: %s\n\n" +
		"Don't forget to prepare your gift! 🎁",
	ReminderOneDay: "🎅 Urgent Reminder!\n\n" +
		"Game: *%s*\n" +
		"Gift exchange is *tomorrow*! ⏰\n" +
		"Date: %s\n\n" +
		"Make sure your gift is ready! 🎁",

	Welcome: "🎅 Welcome to Secret Santa!",
	Help: "🎅 *Secret Santa - Help* 🎅\n\n" +
		"register - register to play\n" +
		"create-game - create a game\n" +
		"join-game - join a game\n" +
		"list-my-games - my games\n" +
		"draw <ID> - draw names (organizer)\n" +
		"reset-draw <ID> - reset the draw (organizer)\n" +
		"send-message - send an anonymous message\n" +
		"list-messages - unread messages\n" +
		"confirm-gift-sent <ID> - gift sent\n" +
		"confirm-gift-received <ID> - gift received\n" +
		"gift-status <ID> - gift status\n" +
		"rate-gift <ID> - rate your gift\n" +
		"reminder-settings - toggle reminders\n" +
		"set-language <ru|en> - language\n" +
		"cancel - cancel the current action\n\n" +
		"A draw needs at least 3 participants.",
	AskName:               "📝 What is your name? Your Secret Santa will see it.",
	AskWishes:             "Nice to meet you, %s! 🎁 Tell us your gift wishes.",
	Registered:            "🎉 Congratulations! You have been registered successfully!",
	AskGameName:           "🎮 Enter the game name:",
	AskBudget:             "💰 Enter the gift budget (e.g. 20-30):",
	AskDate:               "📅 Enter the exchange date (DD.MM.YYYY):",
	GameCreated:           "🎉 Game '%s' created successfully!\nGame ID: %s",
	ChooseJoinGame:        "🎮 Choose a game:",
	JoinOption:            "%s · 📅 %s · 👥 %d",
	NoJoinableGames:       "😔 No games available to join.",
	Joined:                "✅ You joined the game *%s*!",
	MyGamesHeader:         "🎮 *Your games:*",
	MyGamesEmpty:          "You have no games yet.",
	MyGameLine:            "\n*%s* (ID: %s)\n💰 %s · 📅 %s · 👥 %d\n%s · %s",
	StatusDrawn:           "🎲 drawn",
	StatusWaiting:         "⏳ waiting for draw",
	RoleOrganizer:         "👑 organizer",
	RoleParticipant:       "🎅 participant",
	DrawDone:              "🎉 Draw for game '%s' completed! Participants: %d. Everyone has been notified.",
	ResetDone:             "🔄 Draw for game '%s' has been reset.",
	ChooseMessageGame:     "📨 Choose a game:",
	NoCounterparts:        "😔 No drawn games yet.",
	CounterpartReceiver:   "%s: your recipient",
	CounterpartSanta:      "%s: your Secret Santa",
	AskMessageText:        "✍️ Write your message:",
	MessageSent:           "✅ Message sent anonymously!",
	NoMessages:            "📭 No new messages.",
	MessagesHeader:        "📬 *New messages: %d*",
	MessageLine:           "\n🎮 %s · %s\n%s",
	GiftSentConfirmed:     "✅ Gift sending confirmed for game '%s'!",
	GiftReceivedConfirmed: "✅ Gift receipt confirmed for game '%s'!",
	AskRating:             "⭐ Rate your gift from 1 to 5:",
	AskFeedback:           "💬 Leave feedback or send skip:",
	RatingSaved:           "🙏 Thank you! Your rating: %s",
	GiftStatusHeader:      "🎁 *Gift status for %s:*",
	GiftStatusLine:        "%s: sent %s · received %s",
	RemindersOn:           "🔔 Reminders enabled.",
	RemindersOff:          "🔕 Reminders disabled.",
	LanguageSet:           "🇬🇧 Language set to English.",
	Cancelled:             "❌ Cancelled.",
	NothingToCancel:       "Nothing to cancel.",
	NoActiveFlow:          "Send help to see the list of commands.",
	UnknownCommand:        "❓ Unknown command: %s",
	DeliveryWarning:       "⚠️ A notification could not be delivered, but your changes were saved.",
	ErrorReply:            "❌ %s",

	ErrorValidation:    "Invalid input.",
	ErrorPermission:    "You are not allowed to do that.",
	ErrorState:         "This action is not available right now.",
	ErrorNotFound:      "Nothing found.",
	ErrorDrawExhausted: "Could not complete the draw, please try again.",
	ErrorInternal:      "Something went wrong, please try again later.",

	ErrorMissingValue:        "The answer cannot be empty.",
	ErrorBadDate:             "Invalid date. Use DD.MM.YYYY or YYYY-MM-DD.",
	ErrorBadRating:           "The rating must be a number from 1 to 5.",
	ErrorEmptyFeedback:       "The feedback is empty. Write something or send skip.",
	ErrorNothingToSkip:       "This step cannot be skipped.",
	ErrorUnsupportedLanguage: "Available languages: ru, en.",
	ErrorMissingGameID:       "Please give the game ID.",
	ErrorAlreadyRegistered:   "You are already registered.",
	ErrorNotRegistered:       "Please register first: register.",
	ErrorNotOrganizer:        "Only the organizer can do that.",
	ErrorTooFewParticipants:  "A draw needs at least 3 participants.",
	ErrorAlreadyDrawn:        "This game has already been drawn.",
	ErrorNotDrawn:            "This game has not been drawn yet.",
	ErrorDrawConflict:        "The game changed during the draw, please try again.",
	ErrorAlreadyJoined:       "You already joined this game.",
	ErrorGameClosed:          "This game is closed.",
	ErrorNothingToRate:       "Confirm that you received the gift first.",
	ErrorGameNotFound:        "Game not found.",
	ErrorNotParticipant:      "You are not a participant of this game.",
	ErrorNoCounterpart:       "There is nobody to message in this game yet.",
	ErrorUnknownOption:       "Please pick one of the offered options.",
}
