package seeders

import "github.com/google/uuid"

// seedNamespace - детерминированные ID: повторный запуск сидеров не плодит дубликаты.
var seedNamespace = uuid.MustParse("6f1c1f0e-4a8b-4bb4-9a57-2f0f6e0b7c11")

func seedID(kind, name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+name)).String()
}

type roleSeed struct {
	Name        string
	Description string
	// Уровни: заявки, техника, зависимости, подразделения, склады, пользователи, роли, гранты, отчеты
	Levels                  [9]int
	CanExportData           bool
	CanViewReports          bool
	CanManageAllDepartments bool
	CanManageUsers          bool
	IsSystemAdmin           bool
}

var rolesData = []roleSeed{
	{
		Name:                    "Администратор",
		Description:             "Полный доступ ко всем разделам",
		Levels:                  [9]int{2, 2, 2, 2, 2, 2, 2, 2, 2},
		CanExportData:           true,
		CanViewReports:          true,
		CanManageAllDepartments: true,
		CanManageUsers:          true,
		IsSystemAdmin:           true,
	},
	{
		Name:           "Диспетчер",
		Description:    "Создание и редактирование заявок на смену",
		Levels:         [9]int{2, 1, 1, 1, 1, 0, 0, 0, 1},
		CanExportData:  true,
		CanViewReports: true,
	},
	{
		Name:        "Наблюдатель",
		Description: "Только просмотр заявок и каталога",
		Levels:      [9]int{1, 1, 1, 1, 1, 0, 0, 0, 0},
	},
}

type equipmentSeed struct {
	Name               string
	AllowMultipleUnits bool
}

var equipmentData = []equipmentSeed{
	{Name: "Кран", AllowMultipleUnits: true},
	{Name: "Оператор крана", AllowMultipleUnits: true},
	{Name: "Погрузчик", AllowMultipleUnits: true},
	{Name: "Водитель погрузчика", AllowMultipleUnits: true},
	{Name: "Самосвал", AllowMultipleUnits: true},
	{Name: "Стропальщик", AllowMultipleUnits: true},
}

type edgeSeed struct {
	Main          string
	Dependent     string
	RequiredCount int
	IsMandatory   bool
	Description   string
}

var dependencyData = []edgeSeed{
	{Main: "Кран", Dependent: "Оператор крана", RequiredCount: 1, IsMandatory: true, Description: "Кран работает только с оператором"},
	{Main: "Кран", Dependent: "Стропальщик", RequiredCount: 2, IsMandatory: true, Description: "Для строповки нужны два человека"},
	{Main: "Погрузчик", Dependent: "Водитель погрузчика", RequiredCount: 1, IsMandatory: true},
	{Main: "Самосвал", Dependent: "Погрузчик", RequiredCount: 1, IsMandatory: false, Description: "Рекомендуется для погрузки"},
}

type departmentSeed struct {
	Name       string
	Warehouses []string
}

var departmentsData = []departmentSeed{
	{Name: "Северный участок", Warehouses: []string{"Склад С-1", "Склад С-2"}},
	{Name: "Южный участок", Warehouses: []string{"Склад Ю-1"}},
}
