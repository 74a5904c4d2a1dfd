package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateYear(
	t *testing.T,
	repo greeting.Repository,
	owner user.User,
	year int,
	title string,
) greeting.Year {
	t.Helper()

	tstamp := time.Now().UTC()
	y := greeting.Year{
		ID:            uuid.New().String(),
		Year:          year,
		OwnerID:       owner.ID,
		Username:      owner.Username,
		TitleText:     title,
		FooterVisible: true,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	y, err := repo.CreateYear(context.Background(), y)
	if err != nil {
		t.Fatalf("CreateYear() failed: %v", err)
	}
	return y
}

func CreateCard(
	t *testing.T,
	repo greeting.Repository,
	y greeting.Year,
	title, month string,
	order int,
) greeting.Card {
	t.Helper()

	tstamp := time.Now().UTC()
	c := greeting.Card{
		ID:           uuid.New().String(),
		YearID:       y.ID,
		Title:        title,
		Month:        month,
		DisplayOrder: order,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	c, err := repo.CreateCard(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCard() failed: %v", err)
	}
	return c
}
