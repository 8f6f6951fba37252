package handler

import (
	"chatdash/internal/usecase"
)

var (
	userHandler    *UserHandler
	friendHandler  *FriendHandler
	chatHandler    *ChatHandler
	messageHandler *MessageHandler
	mediaHandler   *MediaHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	friendUseCase *usecase.FriendUseCase,
	chatUseCase *usecase.ChatUseCase,
	messageUseCase *usecase.MessageUseCase,
	mediaUseCase *usecase.MediaUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	friendHandler = NewFriendHandler(friendUseCase, userUseCase)
	chatHandler = NewChatHandler(chatUseCase, userUseCase)
	messageHandler = NewMessageHandler(messageUseCase, chatUseCase)
	mediaHandler = NewMediaHandler(mediaUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetFriendHandler() *FriendHandler {
	return friendHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetMessageHandler() *MessageHandler {
	return messageHandler
}

func GetMediaHandler() *MediaHandler {
	return mediaHandler
}
