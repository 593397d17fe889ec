package model

const DefaultLanguage = "English"

type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Languages 是可选的摘要语言，顺序即下拉框顺序
var Languages = []Language{
	{"English", "en"},
	{"Spanish", "es"},
	{"French", "fr"},
	{"Hindi", "hi"},
	{"Telugu", "te"},
	{"German", "de"},
	{"Chinese (Simplified)", "zh-CN"},
	{"Chinese (Traditional)", "zh-TW"},
	{"Japanese", "ja"},
	{"Korean", "ko"},
	{"Italian", "it"},
	{"Portuguese", "pt"},
	{"Russian", "ru"},
	{"Arabic", "ar"},
	{"Bengali", "bn"},
	{"Tamil", "ta"},
	{"Turkish", "tr"},
	{"Urdu", "ur"},
	{"Malay", "ms"},
	{"Dutch", "nl"},
	{"Greek", "el"},
	{"Polish", "pl"},
	{"Hebrew", "he"},
	{"Swedish", "sv"},
	{"Thai", "th"},
	{"Vietnamese", "vi"},
	{"Filipino", "tl"},
}

// LanguageCode 按显示名称查找语言代码
func LanguageCode(name string) (string, bool) {
	for _, l := range Languages {
		if l.Name == name {
			return l.Code, true
		}
	}
	return "", false
}
