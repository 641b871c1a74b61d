package i18n

type Messages struct {
	AppShort       string
	AppLong        string
	VerifyShort    string
	Progress       string // total, elapsed, rate
	Found          string // address
	Elapsed        string // elapsed
	Summary        string // found, total, elapsed
	SavedTo        string // dir
	Excess         string // count
	PersistFailed  string // count
	PasswordPrompt string
	VerifyOK       string // total, ok
	VerifyFailed   string // failed, total
}

func Get(lang string) Messages {
	switch lang {
	case "ru":
		return Messages{
			AppShort:       "Поиск vanity-адресов перебором ключей",
			AppLong:        "Генерирует ключевые пары на всех ядрах, пока адрес не совпадёт с шаблоном.",
			VerifyShort:    "Проверить сохранённые ключи в папке запуска",
			Progress:       "Раунд: %s, Прошло: %s, Скорость: %s ключей/сек",
			Found:          "Найден: %s",
			Elapsed:        "Прошло: %s",
			Summary:        "Найдено ключей: %d, перебрано: %s, за %s",
			SavedTo:        "Ключи сохранены в %s",
			Excess:         "Лишних совпадений после лимита: %d",
			PersistFailed:  "Не удалось сохранить ключей: %d",
			PasswordPrompt: "Пароль keystore: ",
			VerifyOK:       "Проверено %d файлов, корректных: %d",
			VerifyFailed:   "Ошибок проверки: %d из %d",
		}
	default: // "en"
		return Messages{
			AppShort:       "Brute-force vanity address search",
			AppLong:        "Generates keypairs on every core until an address matches the configured pattern.",
			VerifyShort:    "Re-derive and check the keys saved in a run directory",
			Progress:       "Round: %s, Elapsed: %s, Speed: %s keys/sec",
			Found:          "Found  : %s",
			Elapsed:        "Elapsed: %s",
			Summary:        "Found %d keys in %s attempts after %s",
			SavedTo:        "Keys saved to %s",
			Excess:         "Matches past the limit: %d",
			PersistFailed:  "Keys that failed to persist: %d",
			PasswordPrompt: "Keystore password: ",
			VerifyOK:       "Checked %d files, %d ok",
			VerifyFailed:   "Verification failures: %d of %d",
		}
	}
}
