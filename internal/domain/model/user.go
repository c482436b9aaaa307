package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/enums"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         enums.Role         `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
