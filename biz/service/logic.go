package service

import (
	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/biz/dal/model"
	"gorm.io/gorm"
)

// Logic contains business rules on top of data persistence.
type Logic struct {
	db      *gorm.DB
	images  *MediaStore[model.Image, *model.Image]
	models  *MediaStore[model.Model, *model.Model]
	linkDAO *db.LinkDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:      dbConn,
		images:  NewMediaStore[model.Image](dbConn),
		models:  NewMediaStore[model.Model](dbConn),
		linkDAO: db.NewLinkDAO(),
	}
}

// Images returns the image record store.
func (l *Logic) Images() *MediaStore[model.Image, *model.Image] { return l.images }

// Models returns the model record store.
func (l *Logic) Models() *MediaStore[model.Model, *model.Model] { return l.models }
