package usecases

import (
	"github.com/dmitrijs2005/fireflow/internal/client/preferences"
	"github.com/dmitrijs2005/fireflow/internal/client/services"
)

// UseCases bundles every operation over one set of services and stores.
type UseCases struct {
	GetCurrentAccount    *GetCurrentAccount
	SaveAccount          *SaveAccount
	UpdateCurrentAccount *UpdateCurrentAccount
	RemoveStaleAccounts  *RemoveStaleAccounts
	GetAccountByState    *GetAccountByState
	GetAccounts          *GetAccounts

	GetCurrentUser            *GetCurrentUser
	GetCurrentUserAccessToken *GetCurrentUserAccessToken
	GetCurrentUserTokenExpiry *GetCurrentUserTokenExpiry
	SaveUser                  *SaveUser
	UpdateCurrentUser         *UpdateCurrentUser
	RemoveStaleUsers          *RemoveStaleUsers
	LogOut                    *LogOut
	DeleteUser                *DeleteUser
	SetNewCurrentUser         *SetNewCurrentUser
	GetUserByState            *GetUserByState
	GetUsers                  *GetUsers
	BeginUserLogin            *BeginUserLogin

	ContainsPreference *ContainsPreference
	GetPreference      *GetPreference
	SavePreference     *SavePreference
	RemovePreference   *RemovePreference
}

func New(accounts services.AccountService, users services.UserService, stores *preferences.Stores) *UseCases {
	return &UseCases{
		GetCurrentAccount:    NewGetCurrentAccount(accounts),
		SaveAccount:          NewSaveAccount(accounts),
		UpdateCurrentAccount: NewUpdateCurrentAccount(accounts),
		RemoveStaleAccounts:  NewRemoveStaleAccounts(accounts),
		GetAccountByState:    NewGetAccountByState(accounts),
		GetAccounts:          NewGetAccounts(accounts),

		GetCurrentUser:            NewGetCurrentUser(users),
		GetCurrentUserAccessToken: NewGetCurrentUserAccessToken(users),
		GetCurrentUserTokenExpiry: NewGetCurrentUserTokenExpiry(users),
		SaveUser:                  NewSaveUser(users),
		UpdateCurrentUser:         NewUpdateCurrentUser(users),
		RemoveStaleUsers:          NewRemoveStaleUsers(users),
		LogOut:                    NewLogOut(users),
		DeleteUser:                NewDeleteUser(users),
		SetNewCurrentUser:         NewSetNewCurrentUser(users),
		GetUserByState:            NewGetUserByState(users),
		GetUsers:                  NewGetUsers(users),
		BeginUserLogin:            NewBeginUserLogin(users),

		ContainsPreference: NewContainsPreference(preferences.NewContainsRouter(stores)),
		GetPreference:      NewGetPreference(preferences.NewGetRouter(stores)),
		SavePreference:     NewSavePreference(preferences.NewSaveRouter(stores)),
		RemovePreference:   NewRemovePreference(preferences.NewRemoveRouter(stores)),
	}
}
