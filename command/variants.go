// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"golang.org/x/text/language"
)

// variantEntry is one recognized surface string for a command in one
// language. Older surface strings (e.g. HELLO for JOIN) are kept for
// backward compatibility with previously published channel instructions.
type variantEntry struct {
	Command Command
	Lang    language.Tag
	Surface string
	// Target is only set for SET_LANGUAGE variants, where the matched
	// surface string selects the new locale
	Target language.Tag
}

var variantTable = []variantEntry{
	// ACCEPT
	{Command: CommandAccept, Lang: language.English, Surface: "ACCEPT"},
	{Command: CommandAccept, Lang: language.Spanish, Surface: "ACEPTAR"},
	{Command: CommandAccept, Lang: language.French, Surface: "ACCEPTER"},
	{Command: CommandAccept, Lang: language.German, Surface: "ANNEHMEN"},

	// ADD
	{Command: CommandAdd, Lang: language.English, Surface: "ADD"},
	{Command: CommandAdd, Lang: language.Spanish, Surface: "AGREGAR"},
	{Command: CommandAdd, Lang: language.French, Surface: "AJOUTER"},
	{Command: CommandAdd, Lang: language.German, Surface: "HINZUFÜGEN"},
	{Command: CommandAdd, Lang: language.German, Surface: "HINZUFUEGEN"},
	{Command: CommandAdd, Lang: language.German, Surface: "DAZU"},

	// DECLINE
	{Command: CommandDecline, Lang: language.English, Surface: "DECLINE"},
	{Command: CommandDecline, Lang: language.Spanish, Surface: "RECHAZAR"},
	{Command: CommandDecline, Lang: language.French, Surface: "REFUSER"},
	{Command: CommandDecline, Lang: language.German, Surface: "ABLEHNEN"},

	// HELP
	{Command: CommandHelp, Lang: language.English, Surface: "HELP"},
	{Command: CommandHelp, Lang: language.Spanish, Surface: "AYUDA"},
	{Command: CommandHelp, Lang: language.French, Surface: "AIDE"},
	{Command: CommandHelp, Lang: language.German, Surface: "HILFE"},

	// INFO (same surface in every language; first table entry wins ties)
	{Command: CommandInfo, Lang: language.English, Surface: "INFO"},
	{Command: CommandInfo, Lang: language.Spanish, Surface: "INFO"},
	{Command: CommandInfo, Lang: language.French, Surface: "INFO"},
	{Command: CommandInfo, Lang: language.German, Surface: "INFO"},

	// INVITE ("INVITER" shares the "INVITE" prefix; longest match wins)
	{Command: CommandInvite, Lang: language.English, Surface: "INVITE"},
	{Command: CommandInvite, Lang: language.Spanish, Surface: "INVITAR"},
	{Command: CommandInvite, Lang: language.French, Surface: "INVITER"},
	{Command: CommandInvite, Lang: language.German, Surface: "EINLADEN"},

	// JOIN (HELLO retained for backward compatibility)
	{Command: CommandJoin, Lang: language.English, Surface: "JOIN"},
	{Command: CommandJoin, Lang: language.English, Surface: "HELLO"},
	{Command: CommandJoin, Lang: language.Spanish, Surface: "HOLA"},
	{Command: CommandJoin, Lang: language.French, Surface: "ALLÔ"},
	{Command: CommandJoin, Lang: language.French, Surface: "ALLO"},
	{Command: CommandJoin, Lang: language.French, Surface: "BONJOUR"},
	{Command: CommandJoin, Lang: language.German, Surface: "HALLO"},

	// LEAVE (GOODBYE retained for backward compatibility)
	{Command: CommandLeave, Lang: language.English, Surface: "LEAVE"},
	{Command: CommandLeave, Lang: language.English, Surface: "GOODBYE"},
	{Command: CommandLeave, Lang: language.Spanish, Surface: "ADIÓS"},
	{Command: CommandLeave, Lang: language.Spanish, Surface: "ADIOS"},
	{Command: CommandLeave, Lang: language.French, Surface: "ADIEU"},
	{Command: CommandLeave, Lang: language.French, Surface: "AU REVOIR"},
	{Command: CommandLeave, Lang: language.German, Surface: "TSCHÜSS"},
	{Command: CommandLeave, Lang: language.German, Surface: "TSCHUESS"},

	// REMOVE
	{Command: CommandRemove, Lang: language.English, Surface: "REMOVE"},
	{Command: CommandRemove, Lang: language.Spanish, Surface: "QUITAR"},
	{Command: CommandRemove, Lang: language.Spanish, Surface: "ELIMINAR"},
	{Command: CommandRemove, Lang: language.French, Surface: "SUPPRIMER"},
	{Command: CommandRemove, Lang: language.German, Surface: "ENTFERNEN"},

	// RENAME
	{Command: CommandRename, Lang: language.English, Surface: "RENAME"},
	{Command: CommandRename, Lang: language.Spanish, Surface: "RENOMBRAR"},
	{Command: CommandRename, Lang: language.French, Surface: "RENOMMER"},
	{Command: CommandRename, Lang: language.German, Surface: "UMBENENNEN"},

	// REPLY
	{Command: CommandReply, Lang: language.English, Surface: "REPLY"},
	{Command: CommandReply, Lang: language.Spanish, Surface: "RESPONDER"},
	{Command: CommandReply, Lang: language.French, Surface: "RÉPONDRE"},
	{Command: CommandReply, Lang: language.French, Surface: "REPONDRE"},
	{Command: CommandReply, Lang: language.German, Surface: "ANTWORTEN"},

	// DESCRIPTION
	{Command: CommandSetDescription, Lang: language.English, Surface: "DESCRIPTION"},
	{Command: CommandSetDescription, Lang: language.Spanish, Surface: "DESCRIPCIÓN"},
	{Command: CommandSetDescription, Lang: language.Spanish, Surface: "DESCRIPCION"},
	{Command: CommandSetDescription, Lang: language.French, Surface: "DESCRIPTION"},
	{Command: CommandSetDescription, Lang: language.German, Surface: "BESCHREIBUNG"},

	// SET_LANGUAGE: the matched surface string selects the target locale
	// regardless of which language it was typed in
	{Command: CommandSetLanguage, Lang: language.English, Surface: "ENGLISH", Target: language.English},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "INGLÉS", Target: language.English},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "INGLES", Target: language.English},
	{Command: CommandSetLanguage, Lang: language.French, Surface: "ANGLAIS", Target: language.English},
	{Command: CommandSetLanguage, Lang: language.German, Surface: "ENGLISCH", Target: language.English},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "ESPAÑOL", Target: language.Spanish},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "ESPANOL", Target: language.Spanish},
	{Command: CommandSetLanguage, Lang: language.English, Surface: "SPANISH", Target: language.Spanish},
	{Command: CommandSetLanguage, Lang: language.French, Surface: "ESPAGNOL", Target: language.Spanish},
	{Command: CommandSetLanguage, Lang: language.German, Surface: "SPANISCH", Target: language.Spanish},
	{Command: CommandSetLanguage, Lang: language.French, Surface: "FRANÇAIS", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.French, Surface: "FRANCAIS", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.English, Surface: "FRENCH", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "FRANCÉS", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "FRANCES", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.German, Surface: "FRANZÖSISCH", Target: language.French},
	{Command: CommandSetLanguage, Lang: language.German, Surface: "DEUTSCH", Target: language.German},
	{Command: CommandSetLanguage, Lang: language.English, Surface: "GERMAN", Target: language.German},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "ALEMÁN", Target: language.German},
	{Command: CommandSetLanguage, Lang: language.Spanish, Surface: "ALEMAN", Target: language.German},
	{Command: CommandSetLanguage, Lang: language.French, Surface: "ALLEMAND", Target: language.German},

	// HOTLINE toggles
	{Command: CommandHotlineOn, Lang: language.English, Surface: "HOTLINE ON"},
	{Command: CommandHotlineOn, Lang: language.Spanish, Surface: "LÍNEA DIRECTA ACTIVADA"},
	{Command: CommandHotlineOn, Lang: language.Spanish, Surface: "LINEA DIRECTA ACTIVADA"},
	{Command: CommandHotlineOn, Lang: language.French, Surface: "HOTLINE ACTIVÉE"},
	{Command: CommandHotlineOn, Lang: language.French, Surface: "HOTLINE ACTIVEE"},
	{Command: CommandHotlineOn, Lang: language.German, Surface: "HOTLINE AN"},
	{Command: CommandHotlineOff, Lang: language.English, Surface: "HOTLINE OFF"},
	{Command: CommandHotlineOff, Lang: language.Spanish, Surface: "LÍNEA DIRECTA DESACTIVADA"},
	{Command: CommandHotlineOff, Lang: language.Spanish, Surface: "LINEA DIRECTA DESACTIVADA"},
	{Command: CommandHotlineOff, Lang: language.French, Surface: "HOTLINE DÉSACTIVÉE"},
	{Command: CommandHotlineOff, Lang: language.French, Surface: "HOTLINE DESACTIVEE"},
	{Command: CommandHotlineOff, Lang: language.German, Surface: "HOTLINE AUS"},

	// VOUCHING toggles
	{Command: CommandVouchingOn, Lang: language.English, Surface: "VOUCHING ON"},
	{Command: CommandVouchingOn, Lang: language.Spanish, Surface: "ATESTIGUANDO ACTIVADA"},
	{Command: CommandVouchingOn, Lang: language.French, Surface: "SE PORTER GARANT ACTIVÉE"},
	{Command: CommandVouchingOn, Lang: language.French, Surface: "SE PORTER GARANT ACTIVEE"},
	{Command: CommandVouchingOn, Lang: language.German, Surface: "VERTRAUEN AN"},
	{Command: CommandVouchingOff, Lang: language.English, Surface: "VOUCHING OFF"},
	{Command: CommandVouchingOff, Lang: language.Spanish, Surface: "ATESTIGUANDO DESACTIVADA"},
	{Command: CommandVouchingOff, Lang: language.French, Surface: "SE PORTER GARANT DÉSACTIVÉE"},
	{Command: CommandVouchingOff, Lang: language.French, Surface: "SE PORTER GARANT DESACTIVEE"},
	{Command: CommandVouchingOff, Lang: language.German, Surface: "VERTRAUEN AUS"},

	// VOUCH LEVEL
	{Command: CommandVouchLevel, Lang: language.English, Surface: "VOUCH LEVEL"},
	{Command: CommandVouchLevel, Lang: language.Spanish, Surface: "NIVEL DE ATESTIGUAR"},
	{Command: CommandVouchLevel, Lang: language.French, Surface: "NIVEAU DE PORTER GARANT"},
	{Command: CommandVouchLevel, Lang: language.German, Surface: "VERTRAUENS-LEVEL"},
}
