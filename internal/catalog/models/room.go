package models

var DefaultRooms = []string{
	"Consultorio 1",
	"Consultorio 2",
	"Consultorio 3",
	"Consultorio 4",
	"Consultorio 5",
	"Consultorio 6",
	"Consultorio 7",
	"Área de Ecografía",
}
